package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"supplies-bot/internal/bot"
	"supplies-bot/internal/controllers"
	"supplies-bot/internal/repositories"
	"supplies-bot/internal/states"
	"supplies-bot/pkg/config"
	"supplies-bot/pkg/telegram"
	"supplies-bot/pkg/wbapi"
)

// InitRouter собирает цепочку вебхука: репозитории → сессии → диспетчер →
// контроллер, и вешает её на путь вебхука из конфига.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	wbClient wbapi.ClientInterface,
	tgService telegram.ServiceInterface,
	jobs bot.JobsInterface,
	cfg *config.Config,
	logger *zap.Logger,
) {
	// --- 1. РЕПОЗИТОРИИ ---
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	workerRepo := repositories.NewWorkerRepository(dbConn, logger)

	// --- 2. ДИАЛОГ ---
	sessionStore := bot.NewRedisSessionStore(cacheRepo, cfg.Bot.SessionTTL)
	answerer := bot.NewAnswerer(tgService, logger)
	dispatcher := bot.NewDispatcher(
		states.All(states.Config{
			PageSize:         cfg.Bot.PageSize,
			SuppliesQuantity: cfg.Bot.SuppliesQuantity,
		}),
		sessionStore,
		wbClient,
		answerer,
		jobs,
		logger,
	)

	// --- 3. КОНТРОЛЛЕРЫ ---
	botCtrl := controllers.NewBotController(dispatcher, workerRepo, logger)
	e.POST(cfg.Telegram.WebhookPath, botCtrl.Webhook)
}
