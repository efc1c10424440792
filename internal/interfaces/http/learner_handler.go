package http

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/auth"
	"github.com/athena-edu/learning-engine/internal/infrastructure/driver"
	"github.com/athena-edu/learning-engine/internal/infrastructure/validate"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// LearnerHandler learner account operations
type LearnerHandler struct {
	JWTUtil           *auth.JWTUtil
	Conn              driver.ITransactionalDB
	LearnerRepository domain.LearnerRepository
	KVStore           driver.KeyValueDB
	LearnerUseCase    domain.LearnerUseCase
	Validator         validate.Validator
	MaximumRetry      int
	RetryTimeout      time.Duration
}

// NewLearnerHandler create a learner controller instance
func NewLearnerHandler(
	JWTUtil *auth.JWTUtil,
	Conn driver.ITransactionalDB,
	LearnerRepository domain.LearnerRepository,
	KVStore driver.KeyValueDB,
	LearnerUseCase domain.LearnerUseCase,
	MaximumRetry int,
	RetryTimeout time.Duration,
	Validator validate.Validator,
) *LearnerHandler {
	handler := &LearnerHandler{
		JWTUtil:           JWTUtil,
		Conn:              Conn,
		LearnerRepository: LearnerRepository,
		KVStore:           KVStore,
		LearnerUseCase:    LearnerUseCase,
		Validator:         Validator,
		MaximumRetry:      MaximumRetry,
		RetryTimeout:      RetryTimeout,
	}
	return handler
}

// HandleSignIn ...
func (lh *LearnerHandler) HandleSignIn(c echo.Context) (err error) {
	ju := lh.JWTUtil
	repo := lh.LearnerRepository

	// parse body
	post := new(domain.LearnerModel)
	if err = c.Bind(&post); err != nil {
		internal := err.(*echo.HTTPError).Internal
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, internal.Error()))
	}
	post.Email = post.Username

	ctx := c.Request().Context()
	tx, err := lh.Conn.BeginTx(ctx, &driver.TxOptions{
		Isolation: sql.LevelRepeatableRead,
	})
	if err != nil {
		return err
	}
	defer tx.Commit(ctx)

	learner, err := repo.FindByCredential(ctx, post)
	if err != nil {
		return err
	}
	if learner == nil {
		return c.JSON(http.StatusUnauthorized,
			NewRESTStandardError(http.StatusUnauthorized, domain.ErrNoSuchLearner.Error()))
	}
	if learner.LoginRetry >= lh.MaximumRetry {
		if time.Since(time.Unix(learner.LastLogin, 0)) < lh.RetryTimeout {
			return c.JSON(http.StatusForbidden,
				NewRESTStandardError(http.StatusForbidden, domain.ErrLearnerTooManyRetry.Error()))
		}
		learner.LoginRetry = 0
	}
	if err := bcrypt.CompareHashAndPassword([]byte(learner.Password), []byte(post.Password)); err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			learner.LoginRetry++
			learner.LastLogin = time.Now().Unix()
			repo.UpdateLearner(ctx, learner)
			return c.JSON(http.StatusUnauthorized,
				NewRESTStandardError(http.StatusUnauthorized, domain.ErrNoSuchLearner.Error()))
		}
		return err
	}

	// reset retry counter
	learner.LoginRetry = 0
	learner.LastLogin = time.Now().Unix()
	repo.UpdateLearner(ctx, learner)
	// issue JWT
	tokenStr, err := ju.GenerateTokenStr(learner)
	if err != nil {
		return err
	}
	ju.SetClientToken(c, tokenStr)
	return nil
}

// HandleSignUp ...
func (lh *LearnerHandler) HandleSignUp(c echo.Context) (err error) {
	LearnerUseCase := lh.LearnerUseCase
	post := new(domain.LearnerModel)

	if err = c.Bind(&post); err != nil {
		internal := err.(*echo.HTTPError).Internal
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, internal.Error()))
	}

	// validation
	if err := lh.Validator.Struct(post); err != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", err))
	}

	// hash password
	if password, err := bcrypt.GenerateFromPassword([]byte(post.Password), bcrypt.MinCost); err == nil {
		post.Password = string(password)
	} else {
		return err
	}

	// register
	_, err = LearnerUseCase.SignUp(c.Request().Context(), post)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatedLearner) {
			return c.JSON(http.StatusConflict, NewRESTStandardError(http.StatusConflict, err.Error()))
		}
		return err
	}
	return
}

// HandleSignOut ...
func (lh *LearnerHandler) HandleSignOut(c echo.Context) (err error) {
	ju := lh.JWTUtil
	kv := lh.KVStore

	if tokenStr, err := ju.ExtractToken(c); err == nil {
		if token, err := ju.Validate(tokenStr); err == nil {
			ju.ClearClientToken(c)
			return kv.SetEX(tokenStr, "", token.TimeRemaining())
		}
		return c.NoContent(http.StatusUnauthorized)
	}
	return nil
}

// HandleLearnerExists ...
func (lh *LearnerHandler) HandleLearnerExists(c echo.Context) (err error) {
	LearnerUseCase := lh.LearnerUseCase
	post := new(domain.LearnerModel)
	post.Username = c.QueryParam("username")
	post.Email = c.QueryParam("email")

	if err := lh.Validator.AllEmpty([]string{"username", "email"}, post.Username, post.Email); err != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate params", []*validate.FieldError{err}))
	}

	existing, err := LearnerUseCase.Exists(c.Request().Context(), post)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, existing)
}
