package routing

import "testing"

func TestClassifier_SegmentBoundary(t *testing.T) {
	t.Parallel()

	a := Allowlist{
		Version: 1,
		Entrypoints: map[string]Entrypoint{
			"server": {Routes: []Route{
				{Path: "/health", Methods: []string{"GET"}, RouteClass: "ops"},
				{Path: "/hierarchy/{name}", Methods: []string{"GET"}, RouteClass: "api"},
			}},
		},
	}
	c, err := NewClassifier(a, "server")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		path string
		want RouteClass
	}{
		{path: "/health", want: RouteClassOps},
		{path: "/hierarchy/Pete", want: RouteClassAPI},
		{path: "/metrics", want: RouteClassOps},
		{path: "/metricsx", want: RouteClassAPI},
		{path: "/debug/pprof", want: RouteClassOps},
		{path: "/healthz", want: RouteClassOps},
		{path: "/", want: RouteClassAPI},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.path); got != tc.want {
			t.Fatalf("path=%s got=%q want=%q", tc.path, got, tc.want)
		}
	}
}

func TestNewClassifier_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewClassifier(Allowlist{Version: 1, Entrypoints: map[string]Entrypoint{}}, "server")
	if err == nil {
		t.Fatal("expected missing entrypoint error")
	}

	_, err = NewClassifier(Allowlist{Version: 1, Entrypoints: map[string]Entrypoint{"server": {Routes: nil}}}, "server")
	if err == nil {
		t.Fatal("expected empty routes error")
	}

	_, err = NewClassifier(Allowlist{Version: 1, Entrypoints: map[string]Entrypoint{"server": {Routes: []Route{{}}}}}, "server")
	if err == nil {
		t.Fatal("expected invalid route error")
	}

	_, err = NewClassifier(Allowlist{Version: 1, Entrypoints: map[string]Entrypoint{"server": {Routes: []Route{{Path: "/x", RouteClass: "ui"}}}}}, "server")
	if err == nil {
		t.Fatal("expected unknown class error")
	}
}
