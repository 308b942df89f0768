package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"onboarding-ai-be/internal/entity"
	"onboarding-ai-be/internal/model"
	"onboarding-ai-be/internal/repository/implementation"
	"onboarding-ai-be/internal/repository/specification"
	"onboarding-ai-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	err = gormDB.AutoMigrate(&model.Escalation{})
	assert.NoError(t, err)

	repo := implementation.NewEscalationRepository(gormDB)
	ctx := context.Background()

	t.Run("Create and Read Escalation", func(t *testing.T) {
		userId := "integration-" + uuid.New().String()
		escalation := &entity.Escalation{
			Id:             uuid.New(),
			UserId:         userId,
			SessionId:      "sess-integration",
			Question:       "How do I rotate service credentials?",
			ConversationId: "conv-integration",
			SignalCount:    3,
			Sources:        []string{"runbook.pdf", "faq.md"},
			Confidence:     "low",
			DecisionReason: "no_relevant_docs",
			CreatedAt:      time.Now(),
		}

		err := repo.Create(ctx, escalation)
		assert.NoError(t, err)
		defer repo.Delete(ctx, escalation.Id)

		found, err := repo.FindOne(ctx, specification.ByUserId{UserId: userId})
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, escalation.Question, found.Question)
			assert.Equal(t, []string{"runbook.pdf", "faq.md"}, found.Sources)
		}

		count, err := repo.Count(ctx, specification.ByUserId{UserId: userId})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("FindAll With Pagination", func(t *testing.T) {
		userId := "integration-" + uuid.New().String()
		for i := 0; i < 3; i++ {
			e := &entity.Escalation{
				Id:          uuid.New(),
				UserId:      userId,
				SessionId:   "sess-page",
				Question:    "Paginated question",
				SignalCount: 1,
				CreatedAt:   time.Now(),
			}
			err := repo.Create(ctx, e)
			assert.NoError(t, err)
			defer repo.Delete(ctx, e.Id)
		}

		page, err := repo.FindAll(ctx,
			specification.ByUserId{UserId: userId},
			specification.OrderBy{Field: "created_at", Desc: true},
			specification.Pagination{Limit: 2, Offset: 0},
		)
		assert.NoError(t, err)
		assert.Len(t, page, 2)
	})
}
