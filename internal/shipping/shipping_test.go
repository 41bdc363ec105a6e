package shipping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coalmart/coalmart/internal/cache"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry("dpd")
	dhl := NewDHLClient("http://dhl.local", "")
	dpd := NewDPDClient("http://dpd.local", DPDCredentials{}, cache.NewMemory())
	reg.Register("dhl", dhl)
	reg.Register("dpd", dpd)

	assert.Equal(t, "dpd", reg.Default())

	got, err := reg.Get("dhl")
	require.NoError(t, err)
	assert.Same(t, Carrier(dhl), got)

	// empty name falls back to the default carrier
	got, err = reg.Get("")
	require.NoError(t, err)
	assert.Same(t, Carrier(dpd), got)

	_, err = reg.Get("hermes")
	assert.Error(t, err)
}

func TestDHLCreateShipmentSandbox(t *testing.T) {
	c := NewDHLClient("http://unreachable.invalid", "")

	data, err := c.CreateShipment(context.Background(), 42)

	// without an api key no request leaves the process
	require.NoError(t, err)
	assert.Equal(t, "dhl", data.Provider)
	assert.Equal(t, "DHL-TEST-42", data.TrackingNumber)
	assert.JSONEq(t, `{"mock":true,"reason":"no_api_key"}`, string(data.Raw))
}

func TestDHLCreateShipment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/shipments", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "order-42", req["orderReference"])

		json.NewEncoder(w).Encode(map[string]string{
			"trackingNumber": "JD014600003RD",
			"labelUrl":       "https://dhl.example/label/1",
		})
	}))
	defer srv.Close()

	c := NewDHLClient(srv.URL, "key-1")

	data, err := c.CreateShipment(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, "JD014600003RD", data.TrackingNumber)
	require.NotNil(t, data.LabelURL)
	assert.Equal(t, "https://dhl.example/label/1", *data.LabelURL)
}

func TestDHLGetShipmentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/track/JD014600003RD", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"status": "delivered",
			"events": []map[string]string{{"status": "delivered"}},
		})
	}))
	defer srv.Close()

	c := NewDHLClient(srv.URL, "key-1")

	status, err := c.GetShipmentStatus(context.Background(), "JD014600003RD")

	require.NoError(t, err)
	assert.Equal(t, "delivered", status.Status)
	assert.Len(t, status.Events, 1)
}

func TestDHLServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewDHLClient(srv.URL, "key-1")

	_, err := c.CreateShipment(context.Background(), 1)
	assert.Error(t, err)

	_, err = c.GetShipmentStatus(context.Background(), "X")
	assert.Error(t, err)
}

func TestDPDAuthTokenIsCached(t *testing.T) {
	var logins atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/services/LoginService/V2_0/getAuth":
			logins.Add(1)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "delis-1", req["delisId"])
			assert.Equal(t, "de_DE", req["messageLanguage"])

			json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
		case "/restservices/ShipmentService/V4_4/createShipment":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]string{"parcelLabelNumber": "09981122330100"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewDPDClient(srv.URL, DPDCredentials{DelisID: "delis-1", Password: "pw"}, cache.NewMemory())

	data, err := c.CreateShipment(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "09981122330100", data.TrackingNumber)

	_, err = c.CreateShipment(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, int32(1), logins.Load(), "second shipment must reuse the cached token")
}

func TestDPDEmptyTokenIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": ""})
	}))
	defer srv.Close()

	c := NewDPDClient(srv.URL, DPDCredentials{DelisID: "delis-1", Password: "pw"}, cache.NewMemory())

	_, err := c.CreateShipment(context.Background(), 1)
	assert.Error(t, err)
}

func TestDPDGetShipmentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/services/LoginService/V2_0/getAuth":
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
		case "/restservices/ShipmentService/V4_4/getTrackingData":
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "09981122330100", req["parcelLabelNumber"])
			json.NewEncoder(w).Encode(map[string]string{"status": "ON_THE_ROAD"})
		}
	}))
	defer srv.Close()

	c := NewDPDClient(srv.URL, DPDCredentials{DelisID: "delis-1", Password: "pw"}, cache.NewMemory())

	status, err := c.GetShipmentStatus(context.Background(), "09981122330100")

	require.NoError(t, err)
	assert.Equal(t, "ON_THE_ROAD", status.Status)
}
