package components

import (
	"bookstore-choreography/internal/handler/api"

	"go.uber.org/fx"
)

// route registers a handler constructor in the router's "routes" group.
func route(constructor any) any {
	return fx.Annotate(
		constructor,
		fx.As(new(api.RouteProvider)),
		fx.ResultTags(`group:"routes"`),
	)
}

// subscription registers a consumer's binding in the "subscriptions" group.
func subscription(fn any) any {
	return fx.Annotate(
		fn,
		fx.ResultTags(`group:"subscriptions"`),
	)
}
