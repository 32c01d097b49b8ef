package notify

import (
	"context"
	"fmt"
	"log"

	"outreach-backend/internal/notify/repository"
	outreachdomain "outreach-backend/internal/outreach/domain"
	"outreach-backend/pkg/fcm"
)

// PushNotifier sends approval-queue pushes to the consultant's devices
type PushNotifier struct {
	tokenRepo repository.DeviceTokenRepository
	client    *fcm.Client
}

// NewPushNotifier creates a PushNotifier. A nil client disables pushes.
func NewPushNotifier(tokenRepo repository.DeviceTokenRepository, client *fcm.Client) *PushNotifier {
	return &PushNotifier{tokenRepo: tokenRepo, client: client}
}

// NotifyWaitingApproval pushes a heads-up that a task awaits review
func (n *PushNotifier) NotifyWaitingApproval(consultantID string, task *outreachdomain.OutreachTask) {
	if n.client == nil {
		return
	}

	tokens, err := n.tokenRepo.GetTokensByConsultant(consultantID)
	if err != nil {
		log.Printf("[PushNotifier] Error getting tokens for %s: %v", consultantID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	var tokenStrings []string
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	notification := fcm.NotificationData{
		Title: "Outreach waiting for approval",
		Body:  fmt.Sprintf("%s via %s, planned for %s", task.ContactName, task.Channel, task.ScheduledAt.Format("02/01 15:04")),
		Data: map[string]string{
			"type":    "waiting_approval",
			"task_id": task.ID,
		},
	}

	failedTokens, err := n.client.SendToDevices(context.Background(), tokenStrings, notification)
	if err != nil {
		log.Printf("[PushNotifier] Error sending push for task %s: %v", task.ID, err)
		return
	}
	for _, token := range failedTokens {
		n.tokenRepo.DeleteToken(token)
	}
}
