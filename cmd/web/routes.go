package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	session := alice.New(
		app.sessionManager.LoadAndSave,
		noSurf,
		app.webAuthnHandler.AuthenticateMiddleware,
		commonContext,
	)
	authenticated := session.Append(app.requireAuthentication)
	// SSE connections must not go through LoadAndSave, see serverSentEventMiddleware.
	sse := alice.New(app.serverSentEventMiddleware)

	mux.Handle("GET /api/healthy", session.ThenFunc(app.healthy))
	mux.Handle("GET /api/csrf", session.ThenFunc(app.csrfToken))

	mux.Handle("GET /api/cases", session.ThenFunc(app.listCases))
	mux.Handle("GET /api/cases/{caseID}", session.ThenFunc(app.getCase))

	mux.Handle("GET /api/quiz", session.ThenFunc(app.getQuiz))
	mux.Handle("POST /api/quiz", authenticated.ThenFunc(app.submitQuiz))

	mux.Handle("POST /api/cases/{caseID}/start", authenticated.ThenFunc(app.startCase))
	mux.Handle("PUT /api/cases/{caseID}/progress", authenticated.ThenFunc(app.saveProgress))
	mux.Handle("GET /api/cases/{caseID}/progress", authenticated.ThenFunc(app.getProgress))

	mux.Handle("GET /api/leaderboard", session.ThenFunc(app.getLeaderboard))
	mux.Handle("GET /api/leaderboard/stream", sse.ThenFunc(app.streamLeaderboard))

	mux.Handle("POST /api/registration/start", session.ThenFunc(app.beginRegistration))
	mux.Handle("POST /api/registration/finish", session.ThenFunc(app.finishRegistration))
	mux.Handle("POST /api/login/start", session.ThenFunc(app.beginLogin))
	mux.Handle("POST /api/login/finish", session.ThenFunc(app.finishLogin))
	mux.Handle("POST /api/logout", authenticated.ThenFunc(app.logout))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}
