package transport

import (
	"context"

	"abc-retailers/internal/order"
	"abc-retailers/internal/utils"
)

// viewerFrom builds the order viewer for the authenticated caller.
func viewerFrom(ctx context.Context) (order.Viewer, bool) {
	id, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return order.Viewer{}, false
	}
	return order.Viewer{UserID: id, Admin: utils.IsAdmin(ctx)}, true
}

// sessionFrom returns the cart session id set by the session middleware.
func sessionFrom(ctx context.Context) string {
	sid, _ := utils.GetSessionID(ctx)
	return sid
}
