package services

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var plansYAML []byte

// ErrPlanNotFound is returned for unknown plan slugs
var ErrPlanNotFound = errors.New("plan not found")

// Plan is one paid membership tier
type Plan struct {
	Slug        string   `json:"slug" yaml:"slug"`
	Name        string   `json:"name" yaml:"name"`
	Amount      float64  `json:"amount" yaml:"amount"`
	Currency    string   `json:"currency" yaml:"currency"`
	PriceID     string   `json:"price_id" yaml:"price_id"`
	PaymentLink string   `json:"payment_link" yaml:"payment_link"`
	Description string   `json:"description" yaml:"description"`
	Features    []string `json:"features" yaml:"features"`
	Popular     bool     `json:"popular" yaml:"popular"`
}

// Catalog is the ordered list of plans
type Catalog struct {
	plans  []Plan
	bySlug map[string]int
}

// LoadCatalog parses the embedded plan list
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(plansYAML)
}

// ParseCatalog parses and validates a YAML plan list
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse plans: %w", err)
	}
	if len(doc.Plans) == 0 {
		return nil, fmt.Errorf("plan catalog is empty")
	}

	c := &Catalog{plans: doc.Plans, bySlug: make(map[string]int, len(doc.Plans))}
	popular := 0
	for i, p := range doc.Plans {
		if p.Slug == "" || p.Name == "" {
			return nil, fmt.Errorf("plan %d needs a slug and a name", i)
		}
		if _, dup := c.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("duplicate plan slug %q", p.Slug)
		}
		u, err := url.Parse(p.PaymentLink)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return nil, fmt.Errorf("plan %q has an invalid payment link %q", p.Slug, p.PaymentLink)
		}
		if p.Amount <= 0 {
			return nil, fmt.Errorf("plan %q has no price", p.Slug)
		}
		if p.Popular {
			popular++
		}
		c.bySlug[p.Slug] = i
	}
	if popular > 1 {
		return nil, fmt.Errorf("only one plan may be marked popular, found %d", popular)
	}
	return c, nil
}

// Plans returns a copy of every plan in display order
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	for i, p := range c.plans {
		p.Features = append([]string(nil), p.Features...)
		out[i] = p
	}
	return out
}

// Plan looks a plan up by slug
func (c *Catalog) Plan(slug string) (Plan, error) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, slug)
	}
	return c.plans[i], nil
}

// CheckoutURL returns the payment page for a plan
func (c *Catalog) CheckoutURL(slug string) (string, error) {
	p, err := c.Plan(slug)
	if err != nil {
		return "", err
	}
	return p.PaymentLink, nil
}
