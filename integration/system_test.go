//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

func TestSystem_E2E_CartFlow(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	email := fmt.Sprintf("user_%d_%d@example.com", time.Now().Unix(), rand.Intn(100000))
	pass := "password123!"

	doJSON(t, http.MethodPost, baseURL+"/auth/register", map[string]any{
		"email":    email,
		"password": pass,
	}, nil, 201)

	var loginResp struct {
		AccessToken string `json:"access_token"`
	}
	doJSON(t, http.MethodPost, baseURL+"/auth/login", map[string]any{
		"email":    email,
		"password": pass,
	}, &loginResp, 200)
	if loginResp.AccessToken == "" {
		t.Fatalf("empty access_token")
	}

	var products []map[string]any
	doJSONAuth(t, http.MethodGet, baseURL+"/products", loginResp.AccessToken, nil, &products, 200)
	if len(products) == 0 {
		t.Fatalf("expected non-empty products")
	}

	pid, _ := products[0]["id"].(string)
	if pid == "" {
		t.Fatalf("product id missing in response: %#v", products[0])
	}

	var added map[string]any
	doJSONAuth(t, http.MethodPost, baseURL+"/cart/add", loginResp.AccessToken, map[string]any{
		"product_id": pid,
		"quantity":   2,
	}, &added, 200)

	items, _ := added["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one cart line: %#v", added)
	}
	if total, _ := added["total_items"].(float64); total != 2 {
		t.Fatalf("total_items=%v want=2", added["total_items"])
	}

	var got map[string]any
	doJSONAuth(t, http.MethodGet, baseURL+"/cart", loginResp.AccessToken, nil, &got, 200)
	if total, _ := got["total_items"].(float64); total != 2 {
		t.Fatalf("total_items=%v want=2", got["total_items"])
	}

	if os.Getenv("E2E_RESTART_CART") == "1" {
		restartCartContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")
		doJSONAuth(t, http.MethodGet, baseURL+"/cart", loginResp.AccessToken, nil, &got, 200)
		if total, _ := got["total_items"].(float64); total != 2 {
			t.Fatalf("cart lost after restart: %#v", got)
		}
	}

	doJSONAuth(t, http.MethodDelete, baseURL+"/cart/clear", loginResp.AccessToken, nil, &got, 200)
	if total, _ := got["total_items"].(float64); total != 0 {
		t.Fatalf("cart not empty after clear: %#v", got)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()
	doJSONAuth(t, method, url, "", body, out, want)
}

func doJSONAuth(t *testing.T, method, url, token string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		var env struct {
			Success bool            `json:"success"`
			Data    json.RawMessage `json:"data"`
			Error   string          `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v (error=%q)", err, env.Error)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
