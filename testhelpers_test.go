//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/application"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/events"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/events/consumer"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/kafka"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// boardingStack holds wired-up service components.
type boardingStack struct {
	Invoices        *application.InvoiceService
	Loyalty         *application.LoyaltyService
	Consumer        *consumer.PaymentEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_boarding",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_boarding sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error)
	require.NoError(t, db.AutoMigrate(
		&repository.ClientModel{},
		&repository.PetModel{},
		&repository.BookingModel{},
		&repository.BoardingDetailModel{},
		&repository.TaxiDetailModel{},
		&repository.BookingPetModel{},
		&repository.InvoiceModel{},
		&repository.InvoiceItemModel{},
		&repository.InvoiceSequenceModel{},
		&repository.GradeModel{},
		&repository.AuditEntryModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicNotificationEvents, events.TopicPaymentEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBoardingStack wires the invoice and loyalty services against real
// containers, the same way cmd/server does.
func setupBoardingStack(t *testing.T, db *gorm.DB, brokers []string) *boardingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	clientRepo := repository.NewGormClientRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	invoiceRepo := repository.NewGormInvoiceRepository(db)
	gradeRepo := repository.NewGormGradeRepository(db)
	auditRepo := repository.NewGormAuditRepository(db)

	producer := kafka.NewProducer(brokers, logger)
	loyaltySvc := application.NewLoyaltyService(gradeRepo, bookingRepo, invoiceRepo, clientRepo, auditRepo, producer, logger)
	invoiceSvc := application.NewInvoiceService(invoiceRepo, bookingRepo, loyaltySvc, auditRepo, logger)

	groupID := fmt.Sprintf("test-boarding-%s", uuid.New().String()[:8])
	paymentConsumer := consumer.NewPaymentEventConsumer(brokers, groupID, invoiceSvc, logger)

	return &boardingStack{
		Invoices:        invoiceSvc,
		Loyalty:         loyaltySvc,
		Consumer:        paymentConsumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedClient inserts a client row.
func seedClient(t *testing.T, db *gorm.DB, clientID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	model := repository.ClientModel{
		ID:           clientID,
		Email:        fmt.Sprintf("int-%s@example.com", uuid.New().String()[:8]),
		Name:         "Integration Client",
		Language:     "en",
		Role:         "client",
		PasswordHash: "$2a$10$integrationtesthashvalueintegrationtesthashval",
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed client")
}

// seedCompletedBoarding inserts a completed boarding booking with its detail
// and pet link rows.
func seedCompletedBoarding(t *testing.T, db *gorm.DB, bookingID, clientID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -10)
	end := now.AddDate(0, 0, -5)

	booking := repository.BookingModel{
		ID:          bookingID,
		Reference:   fmt.Sprintf("BK-INT%s", uuid.New().String()[:6]),
		ClientID:    clientID,
		ServiceType: "boarding",
		Status:      "completed",
		StartDate:   start,
		EndDate:     &end,
		TotalCents:  5 * 3500,
		Notes:       "integration test",
		Version:     4,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.Create(&booking).Error, "failed to seed booking")

	detail := repository.BoardingDetailModel{
		BookingID:     bookingID,
		DogNightCents: 3500,
		CatNightCents: 2500,
		TaxiLegCents:  1500,
	}
	require.NoError(t, db.Create(&detail).Error, "failed to seed boarding detail")

	link := repository.BookingPetModel{
		BookingID: bookingID,
		PetID:     uuid.New(),
		Position:  0,
		Name:      "Rex",
		Species:   "dog",
	}
	require.NoError(t, db.Create(&link).Error, "failed to seed booking pet")
}

// seedPendingInvoice inserts a pending invoice with one item row.
func seedPendingInvoice(t *testing.T, db *gorm.DB, invoiceID, clientID uuid.UUID, amountCents int64) {
	t.Helper()
	now := time.Now().UTC()

	invoice := repository.InvoiceModel{
		ID:          invoiceID,
		Number:      fmt.Sprintf("INV-%d-9%s", now.Year(), uuid.New().String()[:3]),
		ClientID:    clientID,
		Status:      "pending",
		AmountCents: amountCents,
		IssuedAt:    now,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.Create(&invoice).Error, "failed to seed invoice")

	item := repository.InvoiceItemModel{
		ID:             uuid.New(),
		InvoiceID:      invoiceID,
		Position:       0,
		Description:    "Dog boarding - Rex",
		Quantity:       1,
		UnitPriceCents: amountCents,
		TotalCents:     amountCents,
	}
	require.NoError(t, db.Create(&item).Error, "failed to seed invoice item")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForInvoiceStatus polls the invoices table until the status matches.
func waitForInvoiceStatus(t *testing.T, db *gorm.DB, invoiceID uuid.UUID, expectedStatus string, timeout time.Duration) repository.InvoiceModel {
	t.Helper()
	var result repository.InvoiceModel
	require.Eventually(t, func() bool {
		var model repository.InvoiceModel
		err := db.Where("id = ?", invoiceID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "invoice did not transition to %s", expectedStatus)
	return result
}

// waitForGradeTier polls the loyalty_grades table until the tier matches.
func waitForGradeTier(t *testing.T, db *gorm.DB, clientID uuid.UUID, expectedTier string, timeout time.Duration) repository.GradeModel {
	t.Helper()
	var result repository.GradeModel
	require.Eventually(t, func() bool {
		var model repository.GradeModel
		err := db.Where("client_id = ?", clientID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Tier == expectedTier {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "grade did not reach tier %s", expectedTier)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.UnmarshalCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
