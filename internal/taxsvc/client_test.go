package taxsvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

func TestClientCalculate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calculate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "CA", req.State)
		assert.True(t, req.OrdinaryIncome.Equal(decimal.NewMoney(50000)))

		json.NewEncoder(w).Encode(Response{
			FederalTax: decimal.NewMoney(4000),
			StateTax:   decimal.NewMoney(1200),
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := client.Calculate(context.Background(), Request{
		State:          "CA",
		FilingStatus:   domain.FilingSingle,
		Age:            60,
		OrdinaryIncome: decimal.NewMoney(50000),
	})
	require.NoError(t, err)
	assert.True(t, resp.FederalTax.Equal(decimal.NewMoney(4000)))
	assert.True(t, resp.StateTax.Equal(decimal.NewMoney(1200)))
	assert.True(t, resp.IRMAA.IsZero(), "under medicare age")
}

func TestClientFillsIRMAALocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{FederalTax: decimal.NewMoney(1000)})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := client.Calculate(context.Background(), Request{
		State:         "CA",
		FilingStatus:  domain.FilingSingle,
		Age:           67,
		PriorYearMAGI: decimal.NewMoney(150000),
	})
	require.NoError(t, err)
	assert.Equal(t, "2220.00", resp.IRMAA.String())
}

func TestClientRetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(Response{FederalTax: decimal.NewMoney(500)})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, WithRetries(3, time.Millisecond))
	require.NoError(t, err)

	resp, err := client.Calculate(context.Background(), Request{State: "CA"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, attempts.Load())
	assert.True(t, resp.FederalTax.Equal(decimal.NewMoney(500)))
}

func TestClientExhaustedRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, WithRetries(1, time.Millisecond))
	require.NoError(t, err)

	_, err = client.Calculate(context.Background(), Request{State: "CA"})
	var svcErr *ExternalServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "tax", svcErr.Service)
	assert.EqualValues(t, 2, attempts.Load(), "initial try plus one retry")
}

func TestClientDoesNotRetryBadRequests(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, WithRetries(3, time.Millisecond))
	require.NoError(t, err)

	_, err = client.Calculate(context.Background(), Request{State: "CA"})
	var svcErr *ExternalServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.EqualValues(t, 1, attempts.Load())
}

func TestClientBatchSizeMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calculate-batch", r.URL.Path)
		json.NewEncoder(w).Encode([]Response{{FederalTax: decimal.NewMoney(1)}})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.CalculateBatch(context.Background(), []Request{{State: "CA"}, {State: "NY"}})
	var svcErr *ExternalServiceError
	require.ErrorAs(t, err, &svcErr)
}

func TestClientCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, WithRetries(5, time.Minute))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = client.Calculate(ctx, Request{State: "CA"})
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestClientRejectsEmptyURL(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
}
