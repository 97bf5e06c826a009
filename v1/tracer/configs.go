package tracer

// Config configures NewClient.
type Config struct {
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`

	// AppEnv is reported as deployment.environment.
	AppEnv string `yaml:"app_env" envconfig:"APP_ENV"`

	// EnableExport sends spans to the OTLP/HTTP endpoint configured through the
	// standard OTEL_EXPORTER_OTLP_* variables. Spans are still created when it is
	// false, they are just never exported.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`
}
