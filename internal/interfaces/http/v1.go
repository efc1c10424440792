package http

import (
	infra "github.com/athena-edu/learning-engine/internal/infrastructure"
	"github.com/labstack/echo/v4"
)

func v1Endpoint(
	websocket *infra.Websocket,
	LearnerHandler *LearnerHandler,
	ProgressHandler *ProgressHandler,
	LessonHandler *LessonHandler,
	ExamHandler *ExamHandler,
	PlaybackFeed *PlaybackFeed,
	jwtMiddleware echo.MiddlewareFunc,
	refreshMiddleware echo.MiddlewareFunc,
	requestIDMiddleware echo.MiddlewareFunc,
	traceLoggerMiddleware echo.MiddlewareFunc,
) *endpoint {
	return &endpoint{
		apiVersion:  "api/v1",
		middlewares: []echo.MiddlewareFunc{requestIDMiddleware, traceLoggerMiddleware},
		groups: []*apiGroup{
			{
				prefix: "/learner",
				routes: []*route{
					{"POST", "/login", LearnerHandler.HandleSignIn, nil},
					{"PUT", "/sign-out", LearnerHandler.HandleSignOut, nil},
					{"POST", "/sign-up", LearnerHandler.HandleSignUp, nil},
					{"GET", "/exists", LearnerHandler.HandleLearnerExists, nil},
				},
			},
			{
				prefix:      "/progress",
				middlewares: []echo.MiddlewareFunc{jwtMiddleware, refreshMiddleware},
				routes: []*route{
					{"POST", "", ProgressHandler.HandleReportProgress, nil},
				},
			},
			{
				prefix:      "/lesson",
				middlewares: []echo.MiddlewareFunc{jwtMiddleware, refreshMiddleware},
				routes: []*route{
					{"GET", "/progress", LessonHandler.HandleGetLessonProgress, nil},
					{"GET", "/:lesson_id/status", LessonHandler.HandleGetLessonStatus, nil},
					{"POST", "/:lesson_id/exam/attempts", ExamHandler.HandleStartAttempt, nil},
					{"POST", "/:lesson_id/exam/retake", ExamHandler.HandleRetake, nil},
				},
			},
			{
				prefix:      "/exam",
				middlewares: []echo.MiddlewareFunc{jwtMiddleware, refreshMiddleware},
				routes: []*route{
					{"POST", "/attempts/:attempt_id/submission", ExamHandler.HandleSubmitAttempt, nil},
				},
			},
			{
				prefix:      "/ws",
				middlewares: []echo.MiddlewareFunc{jwtMiddleware},
				routes: []*route{
					{"GET", "/playback", websocket.WithHeartbeat(PlaybackFeed.HandleFeed), nil},
				},
			},
		},
	}
}
