package service

import (
	"context"
	"encoding/json"
	"fmt"

	"legal-chatbot-be/internal/dto"
	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/pkg/events"
	"legal-chatbot-be/pkg/ingest"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IIngestService interface {
	Submit(ctx context.Context, userId string, req *dto.SubmitDocumentRequest) (*dto.SubmitDocumentResponse, error)
	Consume(ctx context.Context) error
	// HandleSubmittedEvent queues documents announced on the event bus, e.g. by the ingest CLI.
	HandleSubmittedEvent(ctx context.Context, event events.Event) error
}

type ingestService struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	topicName  string
	pipeline   *ingest.Pipeline
	events     events.Publisher
	logger     logger.ILogger
}

func NewIngestService(
	publisher message.Publisher,
	subscriber message.Subscriber,
	topicName string,
	pipeline *ingest.Pipeline,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IIngestService {
	if eventPublisher == nil {
		eventPublisher = events.Nop{}
	}
	return &ingestService{
		publisher:  publisher,
		subscriber: subscriber,
		topicName:  topicName,
		pipeline:   pipeline,
		events:     eventPublisher,
		logger:     log,
	}
}

func (s *ingestService) Submit(ctx context.Context, userId string, req *dto.SubmitDocumentRequest) (*dto.SubmitDocumentResponse, error) {
	if !ingest.Supported(req.FileName) {
		return nil, fmt.Errorf("%w: %s", ingest.ErrUnsupportedFormat, req.FileName)
	}
	if err := s.enqueue(dto.IngestDocumentMessage{Source: req.FileName, Content: req.Content, UserId: userId}); err != nil {
		return nil, err
	}
	return &dto.SubmitDocumentResponse{Source: req.FileName, Queued: true}, nil
}

func (s *ingestService) HandleSubmittedEvent(ctx context.Context, event events.Event) error {
	data := event.Payload()
	source, _ := data["source"].(string)
	content, _ := data["content"].(string)
	userId, _ := data["user_id"].(string)
	if source == "" || !ingest.Supported(source) {
		s.logger.Warn("INGEST", "Ignoring submitted document", map[string]interface{}{"source": source})
		return nil
	}
	return s.enqueue(dto.IngestDocumentMessage{Source: source, Content: content, UserId: userId})
}

func (s *ingestService) enqueue(payload dto.IngestDocumentMessage) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), raw)
	if err := s.publisher.Publish(s.topicName, msg); err != nil {
		return fmt.Errorf("queue document %s: %w", payload.Source, err)
	}
	s.logger.Info("INGEST", "Document queued", map[string]interface{}{"source": payload.Source, "message_id": msg.UUID})
	return nil
}

func (s *ingestService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: a document that fails to parse or embed is
// reported through a DOCUMENT_INGESTED event with an error and can be resubmitted.
func (s *ingestService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.IngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("INGEST", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		return
	}

	result := map[string]interface{}{"source": payload.Source}
	if payload.UserId != "" {
		result["user_id"] = payload.UserId
	}

	doc, err := ingest.Parse(payload.Source, []byte(payload.Content))
	if err == nil {
		var n int
		n, err = s.pipeline.Ingest(ctx, doc)
		result["chunks"] = n
	}
	if err != nil {
		s.logger.Error("INGEST", "Document ingestion failed", map[string]interface{}{
			"source": payload.Source,
			"error":  err.Error(),
		})
		result["error"] = err.Error()
	}

	if err := s.events.Publish(ctx, events.New(events.TypeDocumentIngested, result)); err != nil {
		s.logger.Warn("INGEST", "Event publish failed", map[string]interface{}{"error": err.Error()})
	}
}
