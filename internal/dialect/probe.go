package dialect

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gofiber/fiber/v2"
	"github.com/labstack/echo/v4"
	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/models"
)

// endpointHeader carries the index of the endpoint that served a sample request
const endpointHeader = "X-Routeplan-Endpoint"

// Endpoint is one valid endpoint submitted to the probes
type Endpoint struct {
	Method   string
	Template models.RouteTemplate
	Route    string
	Handler  string
	Location models.SourceLocation
}

// Prober registers endpoints on a real router and reports, per endpoint
// index, why it does not register or serve cleanly
type Prober func(endpoints []Endpoint) map[int]string

var probers = map[string]Prober{
	"echo":  ProbeEcho,
	"gin":   ProbeGin,
	"fiber": ProbeFiber,
}

// Lookup returns the prober for a router target
func Lookup(target string) (Prober, bool) {
	p, ok := probers[target]
	return p, ok
}

// Check probes every target and returns the dialect diagnostics per endpoint index
func Check(targets []string, endpoints []Endpoint) map[int][]models.Diagnostic {
	out := make(map[int][]models.Diagnostic)
	for _, target := range targets {
		probe, ok := Lookup(target)
		if !ok {
			continue
		}
		for idx, detail := range probe(endpoints) {
			e := endpoints[idx]
			out[idx] = append(out[idx], diagnostics.New(diagnostics.DialectConflict, e.Location, e.Method, e.Route, target, detail))
		}
	}
	return out
}

// registrationOrder is declaration order, which is what a generated
// registration file would follow
func registrationOrder(endpoints []Endpoint) []int {
	order := make([]int, len(endpoints))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := endpoints[order[i]], endpoints[order[j]]
		if a.Location != b.Location {
			return a.Location.Less(b.Location)
		}
		return a.Handler < b.Handler
	})
	return order
}

type registered struct {
	idx   int
	route Route
}

// verify compares which endpoint served each sample against the one expected
func verify(reg []registered, served func(method, path string) (int, bool), endpoints []Endpoint, findings map[int]string) {
	for _, r := range reg {
		if _, failed := findings[r.idx]; failed || r.route.Sample == "" {
			continue
		}
		method := endpoints[r.idx].Method
		got, ok := served(method, r.route.Sample)
		switch {
		case !ok:
			findings[r.idx] = fmt.Sprintf("sample request %s %s is not matched by %s", method, r.route.Sample, r.route.Pattern)
		case got != r.idx:
			findings[r.idx] = fmt.Sprintf("sample request %s %s is served by %s", method, r.route.Sample, endpoints[got].Handler)
		}
	}
}

// ProbeEcho registers the endpoints on an echo router and resolves each
// sample through Router().Find
func ProbeEcho(endpoints []Endpoint) map[int]string {
	e := echo.New()
	findings := make(map[int]string)
	var reg []registered

	for _, idx := range registrationOrder(endpoints) {
		idx := idx
		for _, r := range Echo(endpoints[idx].Template) {
			if err := capture(func() {
				e.Add(endpoints[idx].Method, r.Pattern, func(c echo.Context) error {
					c.Set(endpointHeader, idx)
					return nil
				})
			}); err != nil {
				findings[idx] = fmt.Sprintf("registering %s: %v", r.Pattern, err)
				break
			}
			reg = append(reg, registered{idx: idx, route: r})
		}
	}

	verify(reg, func(method, path string) (int, bool) {
		c := e.NewContext(nil, nil)
		e.Router().Find(method, path, c)
		if err := c.Handler()(c); err != nil {
			return 0, false
		}
		got, ok := c.Get(endpointHeader).(int)
		return got, ok
	}, endpoints, findings)
	return findings
}

var ginMode sync.Once

// ProbeGin registers the endpoints on a gin engine, turning its conflict
// panics into findings, and serves each sample
func ProbeGin(endpoints []Endpoint) map[int]string {
	ginMode.Do(func() { gin.SetMode(gin.ReleaseMode) })

	engine := gin.New()
	findings := make(map[int]string)
	var reg []registered

	for _, idx := range registrationOrder(endpoints) {
		idx := idx
		for _, r := range Gin(endpoints[idx].Template) {
			if err := capture(func() {
				engine.Handle(endpoints[idx].Method, r.Pattern, func(c *gin.Context) {
					c.Header(endpointHeader, strconv.Itoa(idx))
					c.Status(http.StatusNoContent)
				})
			}); err != nil {
				findings[idx] = fmt.Sprintf("registering %s: %v", r.Pattern, err)
				break
			}
			reg = append(reg, registered{idx: idx, route: r})
		}
	}

	verify(reg, func(method, path string) (int, bool) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return servedBy(w.Header().Get(endpointHeader))
	}, endpoints, findings)
	return findings
}

// ProbeFiber registers the endpoints on a fiber app. Fiber matches in
// registration order, so earlier routes can shadow later ones.
func ProbeFiber(endpoints []Endpoint) map[int]string {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	findings := make(map[int]string)
	var reg []registered

	for _, idx := range registrationOrder(endpoints) {
		idx := idx
		for _, r := range Fiber(endpoints[idx].Template) {
			if err := capture(func() {
				app.Add(endpoints[idx].Method, r.Pattern, func(c *fiber.Ctx) error {
					c.Set(endpointHeader, strconv.Itoa(idx))
					return c.SendStatus(fiber.StatusNoContent)
				})
			}); err != nil {
				findings[idx] = fmt.Sprintf("registering %s: %v", r.Pattern, err)
				break
			}
			reg = append(reg, registered{idx: idx, route: r})
		}
	}

	verify(reg, func(method, path string) (int, bool) {
		resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
		if err != nil {
			return 0, false
		}
		defer resp.Body.Close()
		return servedBy(resp.Header.Get(endpointHeader))
	}, endpoints, findings)
	return findings
}

func servedBy(header string) (int, bool) {
	if header == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(header)
	return idx, err == nil
}

// capture runs fn and converts a panic into an error
func capture(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	fn()
	return nil
}
