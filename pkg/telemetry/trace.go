package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/hostdom/pkg/host"
)

const defaultTracerName = "hostdom"

// TracedHost wraps a host.Host with one span per call.
type TracedHost struct {
	next   host.Host
	tracer trace.Tracer
}

// TraceHost wraps next. A nil tracer uses the global provider's "hostdom"
// tracer.
func TraceHost(next host.Host, tracer trace.Tracer) *TracedHost {
	if tracer == nil {
		tracer = otel.Tracer(defaultTracerName)
	}
	return &TracedHost{next: next, tracer: tracer}
}

// Unwrap returns the wrapped host.
func (t *TracedHost) Unwrap() host.Host { return t.next }

// CreateView implements host.Host.
func (t *TracedHost) CreateView(ctx context.Context, tag int, hostType string, rootTag int, props host.Props) error {
	ctx, span := t.start(ctx, host.OpCreateView,
		attribute.Int("hostdom.tag", tag),
		attribute.String("hostdom.host_type", hostType),
		attribute.Int("hostdom.root_tag", rootTag),
		attribute.Int("hostdom.props", len(props)),
	)
	return finish(span, t.next.CreateView(ctx, tag, hostType, rootTag, props))
}

// UpdateView implements host.Host.
func (t *TracedHost) UpdateView(ctx context.Context, tag int, viewClass string, props host.Props) error {
	ctx, span := t.start(ctx, host.OpUpdateView,
		attribute.Int("hostdom.tag", tag),
		attribute.String("hostdom.view_class", viewClass),
		attribute.Int("hostdom.props", len(props)),
	)
	return finish(span, t.next.UpdateView(ctx, tag, viewClass, props))
}

// ManageChildren implements host.Host.
func (t *TracedHost) ManageChildren(ctx context.Context, container int, moveFrom, moveTo, addTags, addAt, removeAt []int) error {
	ctx, span := t.start(ctx, host.OpManageChildren,
		attribute.Int("hostdom.container", container),
		attribute.Int("hostdom.moves", len(moveFrom)),
		attribute.Int("hostdom.adds", len(addTags)),
		attribute.Int("hostdom.removes", len(removeAt)),
	)
	return finish(span, t.next.ManageChildren(ctx, container, moveFrom, moveTo, addTags, addAt, removeAt))
}

// SetChildren implements host.Host.
func (t *TracedHost) SetChildren(ctx context.Context, container int, tags []int) error {
	ctx, span := t.start(ctx, host.OpSetChildren,
		attribute.Int("hostdom.container", container),
		attribute.Int("hostdom.children", len(tags)),
	)
	return finish(span, t.next.SetChildren(ctx, container, tags))
}

func (t *TracedHost) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "hostdom."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func finish(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
	return err
}
