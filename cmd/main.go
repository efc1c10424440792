package main

import (
	"log"

	"github.com/athena-edu/learning-engine/internal/attempt"
	"github.com/athena-edu/learning-engine/internal/eligibility"
	"github.com/athena-edu/learning-engine/internal/enrollment"
	infra "github.com/athena-edu/learning-engine/internal/infrastructure"
	"github.com/athena-edu/learning-engine/internal/infrastructure/driver"
	"github.com/athena-edu/learning-engine/internal/infrastructure/logging"
	"github.com/athena-edu/learning-engine/internal/infrastructure/uuid"
	ihttp "github.com/athena-edu/learning-engine/internal/interfaces/http"
	"github.com/athena-edu/learning-engine/internal/learner"
	"github.com/athena-edu/learning-engine/internal/lesson"
	"github.com/athena-edu/learning-engine/internal/progress"
	"github.com/athena-edu/learning-engine/internal/scoring"
	"go.uber.org/zap"
)

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	option, err := infra.InitConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		FilePath: option.Logging.FilePath,
		Level:    option.Logging.Level,
		AppID:    option.AppID,
		Env:      option.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %s\n", err)
	}
	logger = logger.With(
		zap.String("service.id", option.AppID),
	)
	defer logger.Sync()

	dbConn, err := driver.GetDBConnection(&driver.DBConfig{
		User:     option.Database.User,
		Password: option.Database.Password,
		MaxConn:  option.Database.MaxConn,
		Protocol: option.Database.Protocol,
		Driver:   option.Database.Driver,
		Host:     option.Database.Host,
		Port:     option.Database.Port,
		Query:    option.Database.Query,
		Schema:   option.Database.Schema,
	})
	if err != nil {
		log.Fatalf("Failed to create DB connection: %s\n", err)
	}
	logger.Debug("Create db connection instance", zap.String("db.driver", option.Database.Driver),
		zap.String("db.schema", option.Database.Schema),
		zap.String("db.host", option.Database.Host),
	)

	rdb := driver.NewRedisClient(option.KVStore.Host, option.KVStore.Port, option.KVStore.Password)

	UUIDGenerator := uuid.NewNanoIDGenerator(option.Security.IDLength)

	LearnerRepo := learner.NewLearnerRepository(dbConn, UUIDGenerator)
	LearnerUseCase := learner.NewLearnerUseCase(LearnerRepo)

	LessonRepo := lesson.NewLessonRepository(dbConn)
	QuestionRepo := lesson.NewQuestionRepository(dbConn)
	EnrollmentRepo := enrollment.NewEnrollmentRepository(dbConn)
	ProgressRepo := progress.NewProgressRepository(dbConn)
	AttemptRepo := attempt.NewAttemptRepository(dbConn)

	ProgressUseCase := progress.NewProgressUseCase(ProgressRepo)
	EligibilityUseCase := eligibility.NewEligibilityUseCase(
		LessonRepo, EnrollmentRepo, ProgressRepo, AttemptRepo,
		eligibility.Rules{
			CompletionProgress: option.Engine.CompletionProgress,
			MinExamProgress:    option.Engine.MinExamProgress,
			MaxTriesPerCycle:   option.Engine.MaxTriesPerCycle,
		},
	)
	Scorer := scoring.NewEngine(scoring.Weights{
		ExamWeight:     option.Engine.ExamWeight,
		ProgressWeight: option.Engine.ProgressWeight,
		PassThreshold:  option.Engine.PassThreshold,
	})
	AttemptUseCase := attempt.NewAttemptUseCase(
		EligibilityUseCase, AttemptRepo, QuestionRepo, ProgressRepo, LessonRepo,
		Scorer, UUIDGenerator,
		attempt.Policy{
			MaxTriesPerCycle: option.Engine.MaxTriesPerCycle,
			QuestionCount:    option.Engine.QuestionCount,
			MinExamProgress:  option.Engine.MinExamProgress,
		},
	)

	ihttp.Serve(dbConn, rdb, option,
		LearnerUseCase, LearnerRepo,
		ProgressUseCase, EligibilityUseCase, AttemptUseCase,
		logger)
}
