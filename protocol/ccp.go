package protocol

import "github.com/encodeous/strand/state"

// Validate checks the semantic constraints of an update that the wire format cannot express
func (x *RouteUpdateRequest) Validate() error {
	if x.RoutingTableId == "" {
		return malformed("route update has no routing table id")
	}
	if x.FromEpochIndex > x.ToEpochIndex {
		return malformed("route update epoch range [%d, %d) is inverted", x.FromEpochIndex, x.ToEpochIndex)
	}
	for _, prefix := range x.WithdrawnRoutes {
		if !state.IsValidPrefix(prefix) {
			return malformed("withdrawn route has invalid prefix %q", prefix)
		}
	}
	for _, route := range x.NewRoutes {
		if route == nil {
			return malformed("route update has an empty route")
		}
		if !state.IsValidPrefix(route.Prefix) {
			return malformed("route has invalid prefix %q", route.Prefix)
		}
		if len(route.Auth) != state.AuthSize {
			return malformed("route %s has auth of length %d, expected %d", route.Prefix, len(route.Auth), state.AuthSize)
		}
		if len(route.Path) == 0 {
			return malformed("route %s has an empty path", route.Prefix)
		}
		for _, hop := range route.Path {
			if hop == "" {
				return malformed("route %s has an empty path segment", route.Prefix)
			}
		}
	}
	return nil
}

func (x *RouteControlRequest) validate() error {
	if _, ok := Mode_name[int32(x.Mode)]; !ok {
		return malformed("unknown route control mode %d", x.Mode)
	}
	return nil
}
