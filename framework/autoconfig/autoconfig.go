// Package autoconfig publishes services into a container only when their
// conditions hold.
//
// A Module groups registrations behind shared conditions. During Register
// the provider evaluates each module in order; when the module matches,
// each of its registrations is checked against its guard (a service that
// must not already exist) and, when that passes, its factory is bound as a
// singleton. Boot then builds every published service once so a failing
// factory aborts bootstrap instead of the first test that needs it.
//
// Every evaluation is recorded in a condition.Report.
package autoconfig

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/km-arc/go-restdocs/framework/capability"
	"github.com/km-arc/go-restdocs/framework/condition"
	"github.com/km-arc/go-restdocs/framework/container"
)

const tracerName = "github.com/km-arc/go-restdocs/framework/autoconfig"

// Registration is one conditionally published service.
type Registration struct {
	// Name identifies the registration in the report, qualified by its module.
	Name string
	// Key is the slot the factory is bound under.
	Key string
	// Guard, when set, is a key that must be empty for the registration to
	// happen. It is usually Key itself, but need not be.
	Guard string
	// Factory builds the service on first resolution.
	Factory container.Factory
}

// Module is a group of registrations sharing conditions.
type Module struct {
	Name          string
	Conditions    []condition.Condition
	Registrations []Registration
}

// Source is the report source of registration r in module m.
func Source(m Module, r Registration) string { return m.Name + "#" + r.Name }

// Provider is a container.ServiceProvider evaluating modules.
type Provider struct {
	container.BaseProvider

	caps      capability.Set
	modules   []Module
	report    *condition.Report
	logger    *slog.Logger
	tracer    trace.Tracer
	published []string
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// WithTracerProvider replaces the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Provider) { p.tracer = tp.Tracer(tracerName) }
}

// WithReport records outcomes into r instead of a report of its own.
func WithReport(r *condition.Report) Option {
	return func(p *Provider) { p.report = r }
}

// NewProvider returns a provider evaluating modules, in order, against caps.
func NewProvider(caps capability.Set, modules []Module, opts ...Option) *Provider {
	p := &Provider{
		caps:    caps,
		modules: modules,
		report:  condition.NewReport(),
		logger:  slog.Default(),
		tracer:  otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Report returns the outcomes recorded so far.
func (p *Provider) Report() *condition.Report { return p.report }

// Published returns the keys bound by Register, in order.
func (p *Provider) Published() []string {
	return append([]string(nil), p.published...)
}

// Register evaluates every module and binds the registrations that pass.
// Conditions never fail, so neither does Register.
func (p *Provider) Register(app *container.Container) error {
	ctx, span := p.tracer.Start(context.Background(), "autoconfig.register",
		trace.WithAttributes(attribute.String("autoconfig.capabilities", p.caps.String())))
	defer span.End()

	cctx := condition.Context{Capabilities: p.caps, Container: app}
	for _, m := range p.modules {
		p.registerModule(ctx, app, cctx, m)
	}
	span.SetAttributes(attribute.Int("autoconfig.published", len(p.published)))
	return nil
}

func (p *Provider) registerModule(ctx context.Context, app *container.Container, cctx condition.Context, m Module) {
	_, span := p.tracer.Start(ctx, "autoconfig.module", trace.WithAttributes(attribute.String("autoconfig.module", m.Name)))
	defer span.End()

	ok, outcomes := condition.Evaluate(cctx, m.Conditions...)
	p.report.Record(m.Name, outcomes...)
	span.SetAttributes(attribute.Bool("autoconfig.match", ok))
	if !ok {
		p.logger.Debug("module skipped", slog.String("module", m.Name), slog.String("reason", outcomes[len(outcomes)-1].Message))
		return
	}

	for _, r := range m.Registrations {
		source := Source(m, r)
		var guard []condition.Condition
		if r.Guard != "" {
			guard = append(guard, condition.OnMissingService(r.Guard))
		}
		ok, outcomes := condition.Evaluate(cctx, guard...)
		p.report.Record(source, outcomes...)
		if !ok {
			span.AddEvent("registration skipped", trace.WithAttributes(attribute.String("autoconfig.registration", source)))
			p.logger.Debug("registration skipped", slog.String("registration", source), slog.String("reason", outcomes[0].Message))
			continue
		}
		app.Singleton(r.Key, r.Factory)
		p.published = append(p.published, r.Key)
		span.AddEvent("registration published", trace.WithAttributes(
			attribute.String("autoconfig.registration", source),
			attribute.String("autoconfig.key", r.Key)))
		p.logger.Debug("registration published", slog.String("registration", source), slog.String("key", r.Key))
	}
}

// Boot builds every published service. The first failure is returned.
func (p *Provider) Boot(app *container.Container) error {
	_, span := p.tracer.Start(context.Background(), "autoconfig.boot")
	defer span.End()

	for _, key := range p.published {
		if _, err := app.Make(key); err != nil {
			err = fmt.Errorf("autoconfig: building [%s]: %w", key, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			p.logger.Error("published service failed to build", slog.String("key", key), slog.Any("error", err))
			return err
		}
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
