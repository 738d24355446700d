package events

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-events-client/gateway"
	"github.com/pkg/errors"
)

const eventsPath = "/api/events"

type listEnvelope struct {
	Events []Event `json:"events"`
}

type detailEnvelope struct {
	Event *Detail `json:"event"`
}

// API calls the public event endpoints.
type API struct {
	gw gateway.Requester
}

func NewAPI(gw gateway.Requester) *API {
	return &API{gw: gw}
}

// List returns events matching q in the server's sort order.
func (a *API) List(ctx context.Context, q Query) ([]Event, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	path := eventsPath
	if encoded := q.Values().Encode(); encoded != "" {
		path += "?" + encoded
	}
	env, err := gateway.Request[listEnvelope](ctx, a.gw, path, gateway.Options{})
	if err != nil {
		return nil, err
	}
	if env.Events == nil {
		return []Event{}, nil
	}
	return env.Events, nil
}

// Get returns the full detail of one event.
func (a *API) Get(ctx context.Context, id string) (*Detail, error) {
	path, err := eventPath(id)
	if err != nil {
		return nil, err
	}
	env, err := gateway.Request[detailEnvelope](ctx, a.gw, path, gateway.Options{})
	if err != nil {
		return nil, err
	}
	if env.Event == nil {
		return nil, errors.Errorf("[events.Get] response has no event %s", id)
	}
	return env.Event, nil
}

// CreateReview posts a review. The rating is checked before any call is made.
func (a *API) CreateReview(ctx context.Context, id string, review NewReview) error {
	path, err := eventPath(id)
	if err != nil {
		return err
	}
	review.Comment = strings.TrimSpace(review.Comment)
	if err := review.validate(); err != nil {
		return err
	}
	return a.gw.Do(ctx, path+"/reviews", gateway.JSON(http.MethodPost, review), nil)
}

func eventPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrEventIDRequired
	}
	return eventsPath + "/" + url.PathEscape(id), nil
}
