//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"bookstore-choreography/cmd/bootstrap"
	"bookstore-choreography/cmd/bootstrap/components"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/config"
	"bookstore-choreography/tests/common/dbtest"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

var (
	rabbitOnce      sync.Once
	rabbitContainer testcontainers.Container
)

// FailingBookID is rejected by the price propagation consumer.
const FailingBookID int64 = 2

func startRabbitMQOnce(t *testing.T) string {
	rabbitOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
			Labels:       map[string]string{"purpose": "e2e-tests"},
		}
		var err error
		rabbitContainer, err = dbtest.StartGenericContainer(req, 3*time.Minute)
		require.NoError(t, err, "failed to start rabbitmq container")
	})
	require.NotNil(t, rabbitContainer, "rabbitmq container unavailable")

	info, err := dbtest.HostPort(rabbitContainer, "5672/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("amqp://guest:guest@%s:%s/", info.Host, info.Port.Port())
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

// newTestConfig points every service at the one in-process listener.
func newTestConfig(t *testing.T, dbCfg config.DBConfig, amqpURL string) config.Config {
	cfg := config.NewTestConfig()
	port := freePort(t)
	base := "http://127.0.0.1:" + port

	cfg.Server.Port = port
	cfg.Store.Driver = config.StorePostgres
	cfg.DB = dbCfg
	cfg.Broker.Driver = config.BrokerRabbitMQ
	cfg.Broker.AMQPURL = amqpURL
	cfg.Broker.RetryInterval = 10 * time.Millisecond
	cfg.Catalog.BaseURL = base
	cfg.Payment.BaseURL = base
	cfg.Order.FailBookIDs = []int64{FailingBookID}
	return cfg
}

func buildApp(t *testing.T, cfg config.Config) (*gin.Engine, *fx.App) {
	var router *gin.Engine

	app := fx.New(
		fx.Provide(
			func() config.Config { return cfg },
			clock.NewRealClock,
		),
		bootstrap.LoggerModule,
		bootstrap.MetricsModule,
		bootstrap.PersistenceModule,
		bootstrap.MessagingModule,
		bootstrap.ClientsModule,
		bootstrap.ServerModule,
		components.CatalogModule,
		components.OrderModule,
		components.PaymentModule,
		components.NotificationModule,
		fx.Populate(&router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "failed to start app")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("failed to stop app", "error", err.Error())
		}
	})
	return router, app
}

// SharedSuite runs all four services in one process against real postgres
// and rabbitmq containers.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool
	Config config.Config
}

func (s *SharedSuite) SetupSuite() {
	t := s.T()
	gin.SetMode(gin.TestMode)

	pool, dbCfg := dbtest.NewDatabase(t)
	amqpURL := startRabbitMQOnce(t)

	s.DB = pool
	s.Config = newTestConfig(t, dbCfg, amqpURL)
	s.Router, _ = buildApp(t, s.Config)
	require.NotNil(t, s.Router, "router setup failed")
}
