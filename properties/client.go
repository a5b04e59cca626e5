package properties

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/estate-client/internal/api"
	"github.com/jrsteele09/estate-client/internal/errors"
)

const propertiesRoute = "/api/properties"

// Doer sends one backend request. *api.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req api.Request, result any) error
}

// Filter narrows a listing. Zero values are not sent.
type Filter struct {
	Search       string
	PropertyType string
	Emirate      string
	Area         string
	MinPrice     float64
	MaxPrice     float64
	MinBedrooms  int
	Skip         int
	Limit        int
}

func (f Filter) query() url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("search", f.Search)
	set("property_type", f.PropertyType)
	set("emirate", f.Emirate)
	set("area", f.Area)
	if f.MinPrice > 0 {
		q.Set("min_price", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.MinBedrooms > 0 {
		q.Set("min_bedrooms", strconv.Itoa(f.MinBedrooms))
	}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

type listResponse struct {
	Properties []Property `json:"properties"`
}

type Client struct {
	transport Doer
}

func NewClient(transport Doer) *Client {
	return &Client{transport: transport}
}

func (c *Client) List(ctx context.Context, filter Filter) ([]Property, error) {
	var resp listResponse
	err := c.transport.Do(ctx, api.Request{Method: http.MethodGet, Path: propertiesRoute, Query: filter.query(), Auth: true}, &resp)
	if err != nil {
		return nil, errors.Wrapf(err, "list properties")
	}
	return resp.Properties, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*Property, error) {
	var p Property
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodGet, Path: itemRoute(id), Auth: true}, &p); err != nil {
		return nil, errors.Wrapf(err, "get property %d", id)
	}
	return &p, nil
}

func (c *Client) Create(ctx context.Context, in Input) (*Property, error) {
	if err := in.ValidateCreate(); err != nil {
		return nil, err
	}
	var p Property
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodPost, Path: propertiesRoute + "/", Body: in, Auth: true}, &p); err != nil {
		return nil, errors.Wrapf(err, "create property")
	}
	return &p, nil
}

func (c *Client) Update(ctx context.Context, id int64, in Input) (*Property, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}
	var p Property
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodPut, Path: itemRoute(id), Body: in, Auth: true}, &p); err != nil {
		return nil, errors.Wrapf(err, "update property %d", id)
	}
	return &p, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodDelete, Path: itemRoute(id), Auth: true}, nil); err != nil {
		return errors.Wrapf(err, "delete property %d", id)
	}
	return nil
}

func itemRoute(id int64) string {
	return propertiesRoute + "/" + strconv.FormatInt(id, 10)
}
