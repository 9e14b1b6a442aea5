package parser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/command"
)

type counting struct{ calls int }

func (c *counting) Parse(context.Context, string) (Result, error) {
	c.calls++
	return Result{Success: true}, nil
}

func TestLimitedRejectsLongInput(t *testing.T) {
	next := &counting{}
	p := Limited{Next: next}

	_, err := p.Parse(context.Background(), strings.Repeat("a", 1001))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputTooLong))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Zero(t, next.calls)

	_, err = p.Parse(context.Background(), strings.Repeat("é", 1000))
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestStatic(t *testing.T) {
	res, err := Static{}.Parse(context.Background(), `[{"intent":"check_stock","params":{}}]`)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, res.Intents, 1)
	assert.Equal(t, command.CheckStock, res.Intents[0].Name)

	res, err = Static{}.Parse(context.Background(), `{"success":false,"intents":[],"error":"no idea"}`)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "no idea", res.Error)

	_, err = Static{}.Parse(context.Background(), "sell 2 shoes")
	assert.Error(t, err)
}

func TestHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body parseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Text == "fail" {
			http.Error(w, "model offline", http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(Result{Success: true, Intents: []command.Intent{
			{Name: command.AddProduct, Params: map[string]any{"name": body.Text}},
		}})
	}))
	defer srv.Close()

	p := NewHTTP(srv.URL, time.Second)
	res, err := p.Parse(context.Background(), "Zobo")
	require.NoError(t, err)
	require.Len(t, res.Intents, 1)
	assert.Equal(t, "Zobo", res.Intents[0].Params["name"])

	_, err = p.Parse(context.Background(), "fail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
