package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/medalboard/backend/config"
	"github.com/medalboard/backend/internal/domain"
	"github.com/medalboard/backend/internal/domain/statistic"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/authenticator"
	"github.com/medalboard/backend/pkg/kafka"
	"github.com/medalboard/backend/pkg/logger"
	"github.com/medalboard/backend/pkg/pubsub"
	"github.com/medalboard/backend/pkg/router"
	"github.com/medalboard/backend/pkg/xcontext"
	"github.com/medalboard/backend/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	db          *gorm.DB
	redisClient xredis.Client
	publisher   pubsub.Publisher
	tokenEngine authenticator.TokenEngine[model.AccessToken]

	userRepo              repository.UserRepository
	categoryRepo          repository.CategoryRepository
	medalRepo             repository.MedalRepository
	taskRepo              repository.TaskRepository
	userMedalRepo         repository.UserMedalRepository
	vouchRepo             repository.UserMedalVouchRepository
	userTaskRepo          repository.UserTaskRepository
	giftRepo              repository.GiftedMedalRepository
	trackedMedalRepo      repository.TrackedMedalRepository
	trackedCollectionRepo repository.TrackedCollectionRepository
	collectionRepo        repository.CollectionRepository
	followRepo            repository.FollowRepository

	popularity statistic.Popularity

	userDomain       domain.UserDomain
	categoryDomain   domain.CategoryDomain
	medalDomain      domain.MedalDomain
	userMedalDomain  domain.UserMedalDomain
	userTaskDomain   domain.UserTaskDomain
	giftDomain       domain.GiftDomain
	watchlistDomain  domain.WatchlistDomain
	collectionDomain domain.CollectionDomain
	followDomain     domain.FollowDomain
	statisticDomain  domain.StatisticDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.ConnectionString())
	default:
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  false,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		panic(err)
	}

	return db
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Error
	}
}

func (s *srv) loadDatabase() {
	s.db = s.newDatabase()
	s.ctx = xcontext.WithDB(s.ctx, s.db)
}

// loadRedisClient leaves redisClient nil when redis is disabled, popularity
// statistics are then read from the database.
func (s *srv) loadRedisClient() {
	cfg := xcontext.Configs(s.ctx).Redis
	if !cfg.Enable {
		return
	}

	client, err := xredis.NewClient(s.ctx, cfg.Addr)
	if err != nil {
		panic(err)
	}

	s.redisClient = client
}

func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx).Kafka
	if !cfg.Enable {
		s.publisher = pubsub.NewNoopPublisher()
		return
	}

	publisher, err := kafka.NewPublisher(cfg.ClientID, strings.Split(cfg.Addr, ","))
	if err != nil {
		panic(err)
	}

	s.publisher = publisher
}

func (s *srv) loadTokenEngine() {
	cfg := xcontext.Configs(s.ctx).Auth
	s.tokenEngine = authenticator.NewTokenEngine[model.AccessToken](
		cfg.TokenSecret, cfg.AccessToken.Expiration)
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.categoryRepo = repository.NewCategoryRepository()
	s.medalRepo = repository.NewMedalRepository()
	s.taskRepo = repository.NewTaskRepository()
	s.userMedalRepo = repository.NewUserMedalRepository()
	s.vouchRepo = repository.NewUserMedalVouchRepository()
	s.userTaskRepo = repository.NewUserTaskRepository()
	s.giftRepo = repository.NewGiftedMedalRepository()
	s.trackedMedalRepo = repository.NewTrackedMedalRepository()
	s.trackedCollectionRepo = repository.NewTrackedCollectionRepository()
	s.collectionRepo = repository.NewCollectionRepository()
	s.followRepo = repository.NewFollowRepository()
}

func (s *srv) loadStatistic() {
	s.popularity = statistic.New(s.userMedalRepo, s.redisClient)
}

func (s *srv) loadDomains() {
	s.userDomain = domain.NewUserDomain(s.userRepo, s.userMedalRepo, s.vouchRepo, s.userTaskRepo,
		s.giftRepo, s.trackedMedalRepo, s.trackedCollectionRepo, s.collectionRepo, s.followRepo)
	s.categoryDomain = domain.NewCategoryDomain(s.categoryRepo, s.userRepo)
	s.medalDomain = domain.NewMedalDomain(s.medalRepo, s.taskRepo, s.categoryRepo, s.userMedalRepo,
		s.vouchRepo, s.userTaskRepo, s.giftRepo, s.trackedMedalRepo, s.collectionRepo, s.userRepo,
		s.popularity)
	s.userMedalDomain = domain.NewUserMedalDomain(s.userRepo, s.medalRepo, s.userMedalRepo,
		s.vouchRepo, s.trackedMedalRepo, s.publisher, s.popularity)
	s.userTaskDomain = domain.NewUserTaskDomain(s.taskRepo, s.userTaskRepo)
	s.giftDomain = domain.NewGiftDomain(s.giftRepo, s.userRepo, s.medalRepo, s.userMedalRepo,
		s.publisher, s.popularity)
	s.watchlistDomain = domain.NewWatchlistDomain(s.medalRepo, s.userMedalRepo, s.collectionRepo,
		s.trackedMedalRepo, s.trackedCollectionRepo)
	s.collectionDomain = domain.NewCollectionDomain(s.collectionRepo, s.trackedCollectionRepo,
		s.medalRepo, s.userRepo)
	s.followDomain = domain.NewFollowDomain(s.followRepo, s.userRepo, s.publisher)
	s.statisticDomain = domain.NewStatisticDomain(s.medalRepo, s.popularity)
}
