package worker

import (
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/service"
)

// StartNotificationWorker registers the change event consumers.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, reports *service.ReportService) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if reports != nil {
		reports.RegisterHandlers(dispatcher)
	}
}
