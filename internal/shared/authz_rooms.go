package shared

// Room analytics permissions for RBAC enforcement.
const (
	PermRoomsViewAnalytics   = "rooms.view_analytics"
	PermRoomsExportAnalytics = "rooms.export_analytics"
)

// RoomAnalyticsScopes returns permissions needed for the analytics dashboard.
func RoomAnalyticsScopes() []string {
	return []string{
		PermRoomsViewAnalytics,
		PermRoomsExportAnalytics,
	}
}
