// Package gateway provides a reusable pipeline run summary gateway that can be
// embedded into other Go applications.
//
// # Overview
//
// The gateway reads Tekton PipelineRuns and TaskRuns from a Kubernetes API
// server and serves display-ready summaries over a REST API: a coarse status,
// durations, commit and image details, parsed results, and a log snippet of
// the failing task. Summaries can optionally be recorded in SQLite to keep a
// history of status changes.
//
// # Basic Usage
//
// Create a gateway programmatically:
//
//	cfg := &gateway.Config{
//		Server: gateway.ServerConfig{
//			Port:         8080,
//			ReadTimeout:  30 * time.Second,
//			WriteTimeout: 30 * time.Second,
//		},
//		Cluster: gateway.ClusterConfig{
//			URL:       "https://api.example.com:6443",
//			TokenFile: "/var/run/secrets/kubernetes.io/serviceaccount/token",
//		},
//		History: gateway.HistoryConfig{DSN: "summaries.db"},
//		Logging: gateway.LoggingConfig{
//			Level:  "info",
//			Format: "json",
//		},
//	}
//
//	gw, err := gateway.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := gw.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// # Using with Existing HTTP Server
//
// Integrate the gateway into an existing HTTP server:
//
//	gw, err := gateway.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer gw.Close()
//
//	http.Handle("/pipelines/", http.StripPrefix("/pipelines", gw.Handler()))
//	http.ListenAndServe(":8080", nil)
//
// # Environment-based Configuration
//
// Load configuration from PLRS_* environment variables, or from a YAML file:
//
//	gw, err := gateway.NewFromEnv("configs/views.yaml")
//	gw, err := gateway.NewFromFile("configs/config.yaml", "configs/views.yaml")
//
// # Direct Service Access
//
// Access the service layer directly for programmatic control:
//
//	svc := gw.Service()
//
//	summary, err := svc.Summary(ctx, "team-a", "go-on-push-x7k2p")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(summary.Status, summary.Duration)
//
//	for ev := range svc.Watch(ctx, "team-a", "go-on-push-x7k2p") {
//		if ev.Err == nil {
//			fmt.Println(ev.Summary.Status)
//		}
//	}
//
// # HTTP API
//
//	GET /health
//	GET /health/details
//	GET /v1/namespaces/{namespace}/pipelineruns?selector=&status=&search=&finished=
//	GET /v1/namespaces/{namespace}/pipelineruns/{name}/summary
//	GET /v1/namespaces/{namespace}/pipelineruns/{name}/history?limit=
//	GET /v1/namespaces/{namespace}/pipelineruns/{name}/events
//	GET /v1/views
//	GET /v1/views/{view_id}/summaries
package gateway
