package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aretw0/triage/api"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists the operations of api/openapi.yaml, one method per
// operationId, with path parameters bound ahead of the call.
type ServerInterface interface {
	// (GET /api/health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (POST /api/session)
	CreateSession(w http.ResponseWriter, r *http.Request)
	// (GET /api/session/{id})
	GetSession(w http.ResponseWriter, r *http.Request, id string)
	// (POST /api/chat)
	Chat(w http.ResponseWriter, r *http.Request)
	// (POST /api/process)
	Process(w http.ResponseWriter, r *http.Request)
	// (GET /api/result/{job_id})
	GetResult(w http.ResponseWriter, r *http.Request, jobID string)
	// (GET /api/result/{job_id}/graph)
	GetResultGraph(w http.ResponseWriter, r *http.Request, jobID string)
	// (GET /api/result/{job_id}/events)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, jobID string)
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// InvalidParamFormatError reports a path parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ServerInterfaceWrapper converts chi requests into ServerInterface calls.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// bindPath binds a required simple-style path parameter.
func (siw *ServerInterfaceWrapper) bindPath(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return "", false
	}
	return value, true
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetHealth(w, r)
}

// CreateSession operation middleware
func (siw *ServerInterfaceWrapper) CreateSession(w http.ResponseWriter, r *http.Request) {
	siw.Handler.CreateSession(w, r)
}

// GetSession operation middleware
func (siw *ServerInterfaceWrapper) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindPath(w, r, "id")
	if !ok {
		return
	}
	siw.Handler.GetSession(w, r, id)
}

// Chat operation middleware
func (siw *ServerInterfaceWrapper) Chat(w http.ResponseWriter, r *http.Request) {
	siw.Handler.Chat(w, r)
}

// Process operation middleware
func (siw *ServerInterfaceWrapper) Process(w http.ResponseWriter, r *http.Request) {
	siw.Handler.Process(w, r)
}

// GetResult operation middleware
func (siw *ServerInterfaceWrapper) GetResult(w http.ResponseWriter, r *http.Request) {
	jobID, ok := siw.bindPath(w, r, "job_id")
	if !ok {
		return
	}
	siw.Handler.GetResult(w, r, jobID)
}

// GetResultGraph operation middleware
func (siw *ServerInterfaceWrapper) GetResultGraph(w http.ResponseWriter, r *http.Request) {
	jobID, ok := siw.bindPath(w, r, "job_id")
	if !ok {
		return
	}
	siw.Handler.GetResultGraph(w, r, jobID)
}

// SubscribeEvents operation middleware
func (siw *ServerInterfaceWrapper) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	jobID, ok := siw.bindPath(w, r, "job_id")
	if !ok {
		return
	}
	siw.Handler.SubscribeEvents(w, r, jobID)
}

// rawSpec returns the embedded OpenAPI document.
func rawSpec() []byte {
	return api.Spec
}

var (
	swaggerOnce sync.Once
	swagger     *openapi3.T
	swaggerErr  error
)

// GetSwagger parses and validates the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		loader := openapi3.NewLoader()
		swagger, swaggerErr = loader.LoadFromData(rawSpec())
		if swaggerErr != nil {
			swaggerErr = fmt.Errorf("failed to load OpenAPI spec: %w", swaggerErr)
			return
		}
		if err := swagger.Validate(context.Background()); err != nil {
			swaggerErr = fmt.Errorf("invalid OpenAPI spec: %w", err)
		}
	})
	return swagger, swaggerErr
}
