package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Procedure names
const (
	ProcIncrementBlogViews      = "increment_blog_views"
	ProcUpdateEventAttendees    = "update_event_attendees"
	ProcRegisterForEvent        = "register_for_event"
	ProcTrackContentInteraction = "track_content_interaction"
	ProcTrackConversion         = "track_conversion"
)

type procedure func(ctx context.Context, s *sqlStore, args Args) (Row, error)

var procedures = map[string]procedure{
	ProcIncrementBlogViews:      incrementBlogViews,
	ProcUpdateEventAttendees:    updateEventAttendees,
	ProcRegisterForEvent:        registerForEvent,
	ProcTrackContentInteraction: trackContentInteraction,
	ProcTrackConversion:         trackConversion,
}

func (s *sqlStore) Call(ctx context.Context, name string, args Args) (Row, error) {
	proc, ok := procedures[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProcedure, name)
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	return proc(ctx, s, args)
}

// increment_blog_views(post_id)
func incrementBlogViews(ctx context.Context, s *sqlStore, args Args) (Row, error) {
	postID, err := args.Int64("post_id")
	if err != nil {
		return nil, err
	}

	n, err := s.exec(ctx, s.db, ProcIncrementBlogViews,
		s.dialect.rebind(`UPDATE blog_posts SET views = COALESCE(views, 0) + 1 WHERE id = ?`), postID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return Row{"updated": n}, nil
}

// update_event_attendees(event_id, ticket_count)
func updateEventAttendees(ctx context.Context, s *sqlStore, args Args) (Row, error) {
	eventID, err := args.Int64("event_id")
	if err != nil {
		return nil, err
	}
	tickets, err := args.Int64("ticket_count")
	if err != nil {
		return nil, err
	}

	n, err := s.exec(ctx, s.db, ProcUpdateEventAttendees,
		s.dialect.rebind(`UPDATE events SET current_attendees = current_attendees + ? WHERE id = ?`), tickets, eventID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return Row{"updated": n}, nil
}

// register_for_event(event_id, name, email, phone, tickets, confirmation_number)
//
// Capacity check, attendee count and registration insert happen in one
// transaction; the event row is guarded by a conditional update so two
// concurrent registrations can never push current_attendees past
// max_attendees.
func registerForEvent(ctx context.Context, s *sqlStore, args Args) (Row, error) {
	eventID, err := args.Int64("event_id")
	if err != nil {
		return nil, err
	}
	tickets, err := args.Int64("tickets")
	if err != nil {
		return nil, err
	}
	if tickets < 1 {
		return nil, fmt.Errorf("%w: tickets must be at least 1", ErrInvalidQuery)
	}

	var registration Row
	err = s.db.Transaction(ctx, func(tx *sql.Tx) error {
		claimed, err := s.exec(ctx, tx, ProcRegisterForEvent, s.dialect.rebind(`
			UPDATE events SET current_attendees = current_attendees + ?
			WHERE id = ? AND status NOT IN ('completed', 'cancelled') AND sold_out = FALSE
			  AND (COALESCE(max_attendees, 0) = 0 OR current_attendees + ? <= max_attendees)`),
			tickets, eventID, tickets)
		if err != nil {
			return err
		}

		events, err := queryRows(ctx, tx, s.dialect.rebind(`SELECT price FROM events WHERE id = ?`), eventID)
		if err != nil {
			return s.classify(err)
		}
		if len(events) == 0 {
			return ErrNotFound
		}
		if claimed == 0 {
			return ErrCapacity
		}

		if _, err := s.exec(ctx, tx, ProcRegisterForEvent, s.dialect.rebind(`
			UPDATE events SET sold_out = TRUE
			WHERE id = ? AND COALESCE(max_attendees, 0) > 0 AND current_attendees >= max_attendees`),
			eventID); err != nil {
			return err
		}

		price := toFloat(events[0]["price"])
		registration, err = s.insert(ctx, tx, TableRegistrations, Row{
			"event_id":            eventID,
			"name":                args.String("name"),
			"email":               args.String("email"),
			"phone":               args.String("phone"),
			"tickets":             tickets,
			"total_amount":        price * float64(tickets),
			"confirmation_number": args.String("confirmation_number"),
			"status":              "confirmed",
			"created_at":          time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return registration, nil
}

// track_content_interaction(user_id, session_id, content_type, content_id, interaction_type, metadata)
func trackContentInteraction(ctx context.Context, s *sqlStore, args Args) (Row, error) {
	metadata, err := args.JSON("metadata")
	if err != nil {
		return nil, err
	}

	return s.insert(ctx, s.db, TableContentInteraction, Row{
		"user_id":          args.String("user_id"),
		"session_id":       args.String("session_id"),
		"content_type":     args.String("content_type"),
		"content_id":       args.String("content_id"),
		"interaction_type": args.String("interaction_type"),
		"metadata":         metadata,
		"created_at":       time.Now().UTC(),
	})
}

// track_conversion(user_id, session_id, conversion_type, value, metadata)
func trackConversion(ctx context.Context, s *sqlStore, args Args) (Row, error) {
	metadata, err := args.JSON("metadata")
	if err != nil {
		return nil, err
	}

	return s.insert(ctx, s.db, TableConversions, Row{
		"user_id":         args.String("user_id"),
		"session_id":      args.String("session_id"),
		"conversion_type": args.String("conversion_type"),
		"value":           toFloat(args["value"]),
		"metadata":        metadata,
		"created_at":      time.Now().UTC(),
	})
}

// Int64 returns a required integer argument
func (a Args) Int64(key string) (int64, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: missing argument %s", ErrInvalidQuery, key)
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: argument %s is %T, want integer", ErrInvalidQuery, key, v)
	}
}

// String returns an optional string argument
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// JSON encodes an optional argument as a JSON document
func (a Args) JSON(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "{}", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: encode %s: %v", ErrInvalidQuery, key, err)
	}
	return string(data), nil
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
