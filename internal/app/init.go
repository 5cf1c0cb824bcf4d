package app

import (
	"fmt"
	"net/http"

	server "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/primary/http"
	healthcheckController "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/primary/http/controllers/healthcheck"
	paymentsController "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/primary/http/controllers/payments"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/primary/handlers"
	kafkaConsumerAdapter "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/primary/kafka"
	rabbitConsumerAdapter "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/primary/rabbitmq"
	alerterAdapter "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/secondary/kafka"
	stripeAdapter "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/secondary/payment/stripe"
	rabbitAdapter "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/secondary/rabbitmq"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/events"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/service"
	alerterService "github.com/Nest-Microservices-Marcelo/payments-ms/internal/services/alerter"
	paymentUsecase "github.com/Nest-Microservices-Marcelo/payments-ms/internal/usecases/payment"
)

type Dependencies struct {
	HTTPServer *http.Server
	Publisher  events.IEventPublisher
	Consumer   events.IConsumer // nil when commands are not consumed
}

// initDependencies wires adapters, use case and transports
func (a *App) initDependencies() (*Dependencies, error) {
	bus, err := a.initEventBus()
	if err != nil {
		return nil, fmt.Errorf("failed to init event bus: %w", err)
	}

	alerter := a.initAlerter()
	paymentUseCase := a.initPayment(bus.publisher, alerter)

	var consumer events.IConsumer
	if a.Cfg.Events.ConsumeCommands {
		handler := handlers.NewCreateSessionHandler(paymentUseCase, bus.publisher, a.Log)
		consumer, err = bus.newConsumer(handler)
		if err != nil {
			_ = bus.publisher.Close()
			return nil, fmt.Errorf("failed to init commands consumer: %w", err)
		}
	}

	httpServer := a.initHTTP(paymentUseCase, bus.publisher)

	return &Dependencies{
		HTTPServer: httpServer,
		Publisher:  bus.publisher,
		Consumer:   consumer,
	}, nil
}

// eventBus publisher plus a factory for the commands consumer on the same driver
type eventBus struct {
	publisher   events.IEventPublisher
	newConsumer func(handler events.MessageHandler) (events.IConsumer, error)
}

func (a *App) initEventBus() (*eventBus, error) {
	switch a.Cfg.Events.Driver {
	case DriverKafka:
		producer, err := kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
		if err != nil {
			return nil, err
		}
		return &eventBus{
			publisher: producer,
			newConsumer: func(handler events.MessageHandler) (events.IConsumer, error) {
				return kafkaConsumerAdapter.NewConsumer(a.Cfg.Kafka, handler, a.Log)
			},
		}, nil

	case DriverRabbitMQ:
		client, err := rabbitAdapter.NewClient(a.Cfg.RabbitMQ, a.Log)
		if err != nil {
			return nil, err
		}
		return &eventBus{
			publisher: client,
			newConsumer: func(handler events.MessageHandler) (events.IConsumer, error) {
				return rabbitConsumerAdapter.NewConsumer(client, a.Cfg.RabbitMQ, handler, a.Log)
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported events driver: %s", a.Cfg.Events.Driver)
	}
}

// initAlerter alerting is optional
func (a *App) initAlerter() service.IAlerterService {
	client := alerterAdapter.NewClient(a.Cfg.Alerter, a.Log)
	if client == nil {
		a.Log.Info("alerter is not configured, alerts disabled")
	}
	return alerterService.New(client)
}

func (a *App) initPayment(publisher events.IEventPublisher, alerter service.IAlerterService) *paymentUsecase.Service {
	provider := stripeAdapter.NewProvider(a.Cfg.Stripe, a.Log)

	return paymentUsecase.New(
		provider,
		publisher,
		alerter, // may be nil
		paymentUsecase.RedirectURLs{
			Success: a.Cfg.Stripe.SuccessURL,
			Cancel:  a.Cfg.Stripe.CancelURL,
		},
		a.Log,
	)
}

func (a *App) initHTTP(paymentUseCase *paymentUsecase.Service, publisher events.IEventPublisher) *http.Server {
	healthCheck := healthcheckController.New(map[string]healthcheckController.ReadinessProbe{
		"events": publisher,
	}, a.Log)
	payments := paymentsController.New(paymentUseCase, a.Log)

	return server.NewHTTPServer(a.Cfg.Server, a.Log, healthCheck, payments)
}
