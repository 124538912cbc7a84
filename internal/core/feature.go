package core

import (
	"context"
	"net/http"
)

// Feature is one area of the site backend: content, events, the
// newsletter and so on. Disabled features are registered but never
// initialized or mounted.
type Feature interface {
	Name() string
	Description() string
	Enabled() bool

	// Init starts background work. It runs once, before routes are served.
	Init(ctx context.Context) error
	Routes() []Route
	Shutdown(ctx context.Context) error
}

// RouteAccess decides which middleware stack a route is mounted behind
type RouteAccess int

const (
	// AccessPublic routes are JSON endpoints open to the site front-end
	AccessPublic RouteAccess = iota
	// AccessForm routes render HTML and accept form posts; they get CSRF protection
	AccessForm
	// AccessAdmin routes require an authenticated admin
	AccessAdmin
)

func (a RouteAccess) String() string {
	switch a {
	case AccessForm:
		return "form"
	case AccessAdmin:
		return "admin"
	default:
		return "public"
	}
}

// Route is one endpoint a feature serves. Path uses chi patterns.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
	Access  RouteAccess
}

// BaseFeature implements the Feature bookkeeping; features embed it and
// override Init, Routes and Shutdown as needed
type BaseFeature struct {
	name        string
	description string
	enabled     bool
	logger      *Logger
}

func NewBaseFeature(name, description string, enabled bool, logger *Logger) *BaseFeature {
	return &BaseFeature{
		name:        name,
		description: description,
		enabled:     enabled,
		logger:      logger,
	}
}

func (f *BaseFeature) Name() string {
	return f.name
}

func (f *BaseFeature) Description() string {
	return f.description
}

func (f *BaseFeature) Enabled() bool {
	return f.enabled
}

// Logger returns the logger tagged with the feature name
func (f *BaseFeature) Logger() *Logger {
	return f.logger.ForFeature(f.name)
}

func (f *BaseFeature) Init(ctx context.Context) error {
	f.Logger().Info("Feature initialized")
	return nil
}

func (f *BaseFeature) Routes() []Route {
	return nil
}

func (f *BaseFeature) Shutdown(ctx context.Context) error {
	f.Logger().Info("Feature stopped")
	return nil
}
