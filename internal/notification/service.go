package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"outreach-backend/internal/outreach/usecase"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// DeliveryOutcome is the message the external call agent and messaging
// gateways publish when an attempt finishes.
type DeliveryOutcome struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"` // completed | failed
	Summary string `json:"summary,omitempty"`
}

// Service subscribes to delivery outcomes and applies them to the task
// lifecycle.
type Service struct {
	pubsubClient *pubsub.Client
	outreach     usecase.OutreachUsecase
	topicName    string
	subName      string
}

// NewService creates the outcome subscriber
func NewService(projectID, topicName, credentialsFile string, outreach usecase.OutreachUsecase) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Service{
		pubsubClient: client,
		outreach:     outreach,
		topicName:    topicName,
		subName:      topicName + "-sub", // Convention: topic-sub
	}, nil
}

// Start begins receiving outcome messages until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting outcome subscriber on topic: %s, subscription: %s", s.topicName, s.subName)

	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, outcome subscriber disabled", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Error creating subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription %s", s.subName)
	}

	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		var outcome DeliveryOutcome
		if err := json.Unmarshal(msg.Data, &outcome); err != nil {
			log.Printf("[PubSub] Invalid outcome payload: %v", err)
			msg.Ack()
			return
		}

		success := outcome.Status == "completed"
		if err := s.outreach.HandleOutcome(outcome.TaskID, success, outcome.Summary); err != nil {
			// State guard rejections mean the outcome already landed or
			// the task was mutated meanwhile; redelivery cannot help.
			log.Printf("[PubSub] Outcome for task %s not applied: %v", outcome.TaskID, err)
		}
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Receive stopped: %v", err)
	}
}

// Close releases the pubsub client.
func (s *Service) Close() error {
	return s.pubsubClient.Close()
}
