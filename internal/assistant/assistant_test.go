// internal/assistant/assistant_test.go
package assistant

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bizzyhq/bizzy-backend/internal/config"
	"github.com/bizzyhq/bizzy-backend/internal/database"
	"github.com/bizzyhq/bizzy-backend/internal/models"
	"github.com/bizzyhq/bizzy-backend/internal/services"
)

// testStack wires the executor against real services over a throwaway
// SQLite database, with a fake payment gateway.
type testStack struct {
	db       *gorm.DB
	user     *models.User
	products *services.ProductService
	ledger   *services.LedgerService
	reports  *services.ReportService
	payments *services.PaymentService
	chats    *services.ChatService
	executor *Executor
	gateway  *fakeGateway
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)",
		filepath.Join(t.TempDir(), "assistant.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	user := &models.User{
		Name:         "Test Owner",
		Email:        "owner@example.com",
		BusinessName: "Warung Tester",
		Currency:     "IDR",
		Status:       models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("rahasia-sekali"))
	require.NoError(t, db.Create(user).Error)

	cfg := &config.Config{
		Environment: "test",
		Payment:     config.PaymentConfig{Currency: "IDR"},
		Frontend:    config.FrontendConfig{BaseURL: "http://localhost:3000"},
	}

	gateway := &fakeGateway{}
	products := services.NewProductService(db)
	ledger := services.NewLedgerService(db, products)
	reports := services.NewReportService(db)
	payments := services.NewPaymentService(db, cfg, gateway, products)
	chats := services.NewChatService(db)

	return &testStack{
		db:       db,
		user:     user,
		products: products,
		ledger:   ledger,
		reports:  reports,
		payments: payments,
		chats:    chats,
		executor: NewExecutor(products, ledger, reports, payments),
		gateway:  gateway,
	}
}

func (ts *testStack) seedProduct(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()

	product, err := ts.products.CreateProduct(ts.user.ID, &services.CreateProductRequest{
		Name:         name,
		SellingPrice: decimal.NewFromInt(price),
		CostPrice:    decimal.NewFromInt(price / 2),
		CurrentStock: stock,
	})
	require.NoError(t, err)
	return product
}

// fakeGateway answers every checkout with a canned payment URL.
type fakeGateway struct {
	calls    int
	statuses map[string]models.PaymentStatus
}

func (g *fakeGateway) CreateCheckout(input *services.CheckoutInput) (*services.CheckoutSession, error) {
	g.calls++
	return &services.CheckoutSession{
		Reference:  "cs_test_" + input.OrderID,
		PaymentURL: "https://pay.example.com/" + input.OrderID,
	}, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*services.GatewayEvent, error) {
	return nil, nil
}

func (g *fakeGateway) GetStatus(reference string) (models.PaymentStatus, error) {
	if g.statuses != nil {
		if status, ok := g.statuses[reference]; ok {
			return status, nil
		}
	}
	return models.PaymentStatusPending, nil
}

// scriptedCompleter replays a fixed sequence of model turns and records
// everything it was asked.
type scriptedCompleter struct {
	turns    []Message
	requests [][]Message
}

func (c *scriptedCompleter) Complete(ctx context.Context, messages []Message, tools []Tool) (*Message, error) {
	copied := make([]Message, len(messages))
	copy(copied, messages)
	c.requests = append(c.requests, copied)

	if len(c.turns) == 0 {
		return &Message{Role: "assistant", Content: "Selesai."}, nil
	}
	turn := c.turns[0]
	c.turns = c.turns[1:]
	return &turn, nil
}

func textTurn(content string) Message {
	return Message{Role: "assistant", Content: content}
}

func toolTurn(id, name, args string) Message {
	return Message{
		Role: "assistant",
		ToolCalls: []ToolCall{
			{ID: id, Name: name, Arguments: []byte(args)},
		},
	}
}
