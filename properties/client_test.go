package properties_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/estate-client/internal/api"
	"github.com/jrsteele09/estate-client/internal/api/apifake"
	ierrors "github.com/jrsteele09/estate-client/internal/errors"
	"github.com/jrsteele09/estate-client/internal/utils"
	"github.com/jrsteele09/estate-client/properties"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type testFixture struct {
	backend *apifake.Backend
	client  *properties.Client
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	backend := apifake.New(t)
	transport := api.New(backend.URL(), 5*time.Second, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access-1"}))
	return &testFixture{backend: backend, client: properties.NewClient(transport)}
}

func TestClient_List(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.JSON(http.MethodGet, "/api/properties", http.StatusOK, map[string]any{
		"properties": []map[string]any{
			{"id": 1, "title": "Marina View 2BR", "address": "Dubai Marina", "property_type": "apartment", "price": 1850000, "bedrooms": 2, "listed_at": "2025-02-01T08:00:00"},
			{"id": 2, "title": "Palm Villa", "address": "Palm Jumeirah", "property_type": "villa", "price": 12500000},
		},
	})

	list, err := f.client.List(context.Background(), properties.Filter{
		PropertyType: "apartment",
		Emirate:      "Dubai",
		MinPrice:     1000000,
		MinBedrooms:  2,
		Limit:        20,
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, 2, utils.Value(list[0].Bedrooms))
	require.Nil(t, list[1].Bedrooms)
	require.Equal(t, 2, int(list[0].ListedAt.Month()))

	q := f.backend.Last(http.MethodGet, "/api/properties").Query
	require.Equal(t, "apartment", q.Get("property_type"))
	require.Equal(t, "Dubai", q.Get("emirate"))
	require.Equal(t, "1000000", q.Get("min_price"))
	require.Equal(t, "2", q.Get("min_bedrooms"))
	require.Equal(t, "20", q.Get("limit"))
	require.False(t, q.Has("max_price"))
	require.False(t, q.Has("search"))
}

func TestClient_Create(t *testing.T) {
	valid := properties.Input{
		Title:        utils.Ptr("Downtown Loft"),
		Address:      utils.Ptr("Boulevard, Downtown Dubai"),
		PropertyType: utils.Ptr("Apartment"),
		Price:        utils.Ptr(2400000.0),
	}

	t.Run("success", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.JSON(http.MethodPost, "/api/properties/", http.StatusOK, map[string]any{"id": 9, "title": "Downtown Loft", "price": 2400000})

		p, err := f.client.Create(context.Background(), valid)
		require.NoError(t, err)
		require.Equal(t, int64(9), p.ID)

		var sent map[string]any
		require.NoError(t, json.Unmarshal(f.backend.Last(http.MethodPost, "/api/properties/").Body, &sent))
		require.Equal(t, "Downtown Loft", sent["title"])
		require.NotContains(t, sent, "bedrooms")
	})

	t.Run("validation", func(t *testing.T) {
		f := setupTestFixture(t)

		missingTitle := valid
		missingTitle.Title = nil
		_, err := f.client.Create(context.Background(), missingTitle)
		require.ErrorIs(t, err, ierrors.ErrValidation)

		freeProperty := valid
		freeProperty.Price = utils.Ptr(0.0)
		_, err = f.client.Create(context.Background(), freeProperty)
		require.ErrorIs(t, err, ierrors.ErrValidation)

		castle := valid
		castle.PropertyType = utils.Ptr("castle")
		_, err = f.client.Create(context.Background(), castle)
		require.ErrorIs(t, err, ierrors.ErrValidation)

		require.Equal(t, 0, f.backend.Total())
	})

	t.Run("forbidden for clients", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.JSON(http.MethodPost, "/api/properties/", http.StatusForbidden, map[string]string{"detail": "Insufficient permissions"})

		_, err := f.client.Create(context.Background(), valid)
		require.ErrorIs(t, err, ierrors.ErrAccessDenied)
		require.Equal(t, "Insufficient permissions", api.DisplayMessage(err))
	})
}

func TestClient_UpdateGetDelete(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.JSON(http.MethodGet, "/api/properties/9", http.StatusOK, map[string]any{"id": 9, "title": "Downtown Loft"})
	f.backend.JSON(http.MethodPut, "/api/properties/9", http.StatusOK, map[string]any{"id": 9, "price": 2300000})
	f.backend.JSON(http.MethodDelete, "/api/properties/9", http.StatusOK, map[string]string{"message": "Property deleted successfully"})

	p, err := f.client.Get(context.Background(), 9)
	require.NoError(t, err)
	require.Equal(t, "Downtown Loft", p.Title)

	_, err = f.client.Update(context.Background(), 9, properties.Input{Price: utils.Ptr(-1.0)})
	require.ErrorIs(t, err, ierrors.ErrValidation)

	p, err = f.client.Update(context.Background(), 9, properties.Input{Price: utils.Ptr(2300000.0)})
	require.NoError(t, err)
	require.Equal(t, 2300000.0, p.Price)
	require.JSONEq(t, `{"price":2300000}`, string(f.backend.Last(http.MethodPut, "/api/properties/9").Body))

	require.NoError(t, f.client.Delete(context.Background(), 9))

	_, err = f.client.Get(context.Background(), 404)
	require.ErrorIs(t, err, ierrors.ErrNotFound)
}
