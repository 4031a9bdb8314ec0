package main

import (
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrdocs/docs"
)

func TestMountSwagger_HostIsFixed(t *testing.T) {
	orig := docs.SwaggerInfo.Host
	t.Cleanup(func() { docs.SwaggerInfo.Host = orig })

	app := fiber.New()
	mountSwagger(app, "api.internal:3000")

	var wg sync.WaitGroup
	for _, host := range []string{"a.example", "b.example", "c.example"} {
		wg.Add(1)
		go func(host string) {
			defer wg.Done()
			req := httptest.NewRequest("GET", "/swagger/doc.json", nil)
			req.Host = host
			resp, err := app.Test(req)
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Contains(t, string(body), `"host": "api.internal:3000"`)
		}(host)
	}
	wg.Wait()

	require.Equal(t, "api.internal:3000", docs.SwaggerInfo.Host)
	assert.Empty(t, docs.SwaggerInfo.Schemes)
}
