package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/config"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func protected() *echo.Echo {
	e := echo.New()
	g := e.Group("", JWTAuth(secret), RequireRole(RoleAdmin, RoleReceptionist))
	g.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, userID(c)+"/"+c.Get("role").(string))
	})
	return e
}

func TestJWTAuth(t *testing.T) {
	e := protected()
	exp := time.Now().Add(time.Hour).Unix()
	cases := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"valid", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "42", "role": "RECEPTIONIST", "exp": exp}), http.StatusOK, "42/RECEPTIONIST"},
		{"missing", "", http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "42", "role": "ADMIN", "exp": exp}), http.StatusUnauthorized, ""},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "42", "role": "ADMIN", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized, ""},
		{"no expiry", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "42", "role": "ADMIN"}), http.StatusUnauthorized, ""},
		{"wrong alg", "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(secret), jwt.MapClaims{"sub": "42", "role": "ADMIN", "exp": exp}), http.StatusUnauthorized, ""},
		{"guest role", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "42", "role": "GUEST", "exp": exp}), http.StatusForbidden, ""},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != c.code {
			t.Fatalf("%s: status = %d, want %d (%s)", c.name, rec.Code, c.code, rec.Body.String())
		}
		if c.body != "" && rec.Body.String() != c.body {
			t.Fatalf("%s: body = %q, want %q", c.name, rec.Body.String(), c.body)
		}
	}
}

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: 2 * time.Hour, KeyStrategy: "ip", Prefix: "rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, redisClient(t), zap.NewNop()))
	e.GET("/rooms", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i, code := range want {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))
		if rec.Code != code {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, code)
		}
		if code == http.StatusTooManyRequests {
			if s, _ := strconv.Atoi(rec.Header().Get("Retry-After")); s <= 0 {
				t.Fatalf("Retry-After = %q", rec.Header().Get("Retry-After"))
			}
		}
	}
}

func TestTokenBucketDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, zap.NewNop()))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
}

func TestRedisCacheReplaysResponse(t *testing.T) {
	cfg := config.CacheConfig{
		Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute,
		KeyStrategy: "route_query", Prefix: "cache", MaxBodyBytes: 1 << 10,
	}
	calls := 0
	e := echo.New()
	e.Use(NewRedisCache(cfg, redisClient(t)))
	e.GET("/rooms/:number", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"room_number": c.Param("number"), "n": calls})
	})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}
	first := get("/rooms/101")
	second := get("/rooms/101")
	other := get("/rooms/102")
	if first.Header().Get("X-Cache") != "MISS" || second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("X-Cache = %q then %q", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("cached body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
	if other.Header().Get("X-Cache") != "MISS" || calls != 2 {
		t.Fatalf("different room served from cache (calls = %d)", calls)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	h := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, h, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, hdr, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || hdr.Get("Content-Type") != "application/json" || string(body) != `{"ok":true}` {
		t.Fatalf("decoded %d %v %q %v", status, hdr, body, ok)
	}
	if _, _, _, ok := decodePayload(bs[:5]); ok {
		t.Fatalf("short payload accepted")
	}
}
