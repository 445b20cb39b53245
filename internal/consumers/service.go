package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"showpro/internal/config"
	"showpro/internal/infra"
	"showpro/internal/models"
	"showpro/internal/service"

	"github.com/nats-io/stan.go"
	"github.com/robfig/cron/v3"
)

const queueGroup = "consumers"

// Job - периодическая задача по расписанию cron
type Job interface {
	Name() string
	Run(ctx context.Context)
}

type ConsumerService struct {
	infra    *infra.Infra
	services *service.Services
	handlers *Handlers
	cron     *cron.Cron
	subs     []stan.Subscription
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	conns, err := infra.Connect(cfg)
	if err != nil {
		return nil, err
	}

	services, err := conns.Services(cfg)
	if err != nil {
		conns.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ConsumerService{
		infra:    conns,
		services: services,
		handlers: NewHandlers(services.Bookings, services.Finance, services.Emails),
		cron: cron.New(
			cron.WithLocation(cfg.Diary.Location),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Services - сервисный слой для задач
func (cs *ConsumerService) Services() *service.Services {
	return cs.services
}

// Schedule регистрирует задачу; пустое расписание отключает ее
func (cs *ConsumerService) Schedule(spec string, job Job) error {
	if spec == "" {
		slog.Info("Job disabled", "job", job.Name())
		return nil
	}
	_, err := cs.cron.AddFunc(spec, func() {
		slog.Debug("Running job", "job", job.Name())
		job.Run(cs.ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, job.Name(), err)
	}
	slog.Info("Job scheduled", "job", job.Name(), "spec", spec)
	return nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	subscriptions := []struct {
		subject string
		fn      func(ctx context.Context, data []byte) error
	}{
		{models.EventBookingCreated, cs.handlers.OnBookingCreated},
		{models.EventBookingCancelled, cs.handlers.OnBookingCancelled},
		{models.EventInvoiceIssued, cs.handlers.OnInvoiceIssued},
	}
	for _, s := range subscriptions {
		sub, err := cs.infra.NATS.SubscribeQueue(s.subject, queueGroup, cs.handlers.Wrap(s.subject, s.fn))
		if err != nil {
			return err
		}
		cs.subs = append(cs.subs, sub)
	}

	cs.cron.Start()
	slog.Info("All consumers started successfully", "subscriptions", len(cs.subs), "jobs", len(cs.cron.Entries()))
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	// Close, а не Unsubscribe: durable подписки должны пережить рестарт
	for _, sub := range cs.subs {
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	stopped := cs.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		slog.Warn("Jobs still running at shutdown")
	}
	cs.cancel()

	return cs.infra.Close()
}
