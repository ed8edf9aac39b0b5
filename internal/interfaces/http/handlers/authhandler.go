package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/application/identity"
	"github.com/frankincense-labs/cx-management/internal/application/identity/dto"
	"github.com/frankincense-labs/cx-management/internal/shared/constants"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/goroutine"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/utils"
)

const defaultPopupStartTimeout = 10 * time.Second

type AuthHandler struct {
	tokens    TokenSyncer
	callbacks CallbackCompleter
	logger    logger.Interface

	// flowTimeout bounds a whole popup flow, which outlives the request
	// that started it.
	flowTimeout    time.Duration
	startTimeout   time.Duration
	allowedOrigins []string
}

func NewAuthHandler(
	tokens TokenSyncer,
	callbacks CallbackCompleter,
	flowTimeout time.Duration,
	allowedOrigins []string,
	logger logger.Interface,
) *AuthHandler {
	return &AuthHandler{
		tokens:         tokens,
		callbacks:      callbacks,
		logger:         logger,
		flowTimeout:    flowTimeout,
		startTimeout:   defaultPopupStartTimeout,
		allowedOrigins: allowedOrigins,
	}
}

type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
	RoleCode    string `json:"roleCode" validate:"omitempty,max=128"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// FederatedStartResponse carries the consent URL the client opens in a popup.
type FederatedStartResponse struct {
	AuthURL string `json:"authUrl"`
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	var req SignUpRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	state, err := store.SignUp(c.Request.Context(), identity.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		RoleCode:    req.RoleCode,
	})
	if err != nil {
		h.logAuthFailure("sign-up failed", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.tokens.SyncToken(c, store)
	utils.CreatedResponse(c, dto.ToSessionDTO(state), "account created")
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	var req SignInRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	state, err := store.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logAuthFailure("sign-in failed", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.tokens.SyncToken(c, store)
	utils.SuccessResponse(c, http.StatusOK, "signed in", dto.ToSessionDTO(state))
}

// SignOut handles POST /api/auth/signout
func (h *AuthHandler) SignOut(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	state := store.SignOut(c.Request.Context())
	h.tokens.SyncToken(c, store)
	utils.SuccessResponse(c, http.StatusOK, "signed out", dto.ToSessionDTO(state))
}

// DeleteAccount handles DELETE /api/auth/account. Password principals get
// the outcome directly; federated principals receive the consent URL and
// the deletion completes when the popup returns.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	session := store.Session()
	if session == nil {
		utils.ErrorResponseWithError(c, errors.NewNotSignedInError())
		return
	}

	if session.Method.IsFederated() {
		h.startPopup(c, "delete-account", func(ctx context.Context, opener identity.PopupOpener) error {
			_, err := store.DeleteAccount(ctx, "", opener)
			return err
		})
		return
	}

	var req DeleteAccountRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	state, err := store.DeleteAccount(c.Request.Context(), req.Password, nil)
	if err != nil {
		h.logAuthFailure("account deletion failed", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.tokens.SyncToken(c, store)
	utils.SuccessResponse(c, http.StatusOK, "account deleted", dto.ToSessionDTO(state))
}

// StartGoogle handles POST /api/auth/federated/google
func (h *AuthHandler) StartGoogle(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	h.startPopup(c, "federated-sign-in", func(ctx context.Context, opener identity.PopupOpener) error {
		_, err := store.SignInFederated(ctx, opener)
		return err
	})
}

// GoogleCallback handles GET /api/auth/federated/google/callback. It runs
// inside the popup, hands the result to the waiting flow and closes itself.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	errParam := c.Query("error")

	if state == "" {
		h.renderPopupResult(c, http.StatusBadRequest, popupResult{Error: constants.OAuthErrorMissingState})
		return
	}

	if err := h.callbacks.Complete(state, code, errParam); err != nil {
		h.logger.Warnw("federated callback rejected", "error", err)
		h.renderPopupResult(c, http.StatusBadRequest, popupResult{Error: constants.OAuthErrorInvalidState})
		return
	}

	result := popupResult{OK: errParam == "" && code != ""}
	if !result.OK {
		result.Error = constants.OAuthErrorCode(errParam)
		if result.Error == "" {
			result.Error = constants.OAuthErrorAccessDenied
		}
	}
	h.renderPopupResult(c, http.StatusOK, result)
}

// startPopup runs flow in the background and answers with the consent URL
// as soon as the flow asks for the popup to be opened. Failures before that
// point, such as a concurrent popup, are returned to the caller.
func (h *AuthHandler) startPopup(c *gin.Context, name string, flow func(ctx context.Context, opener identity.PopupOpener) error) {
	urls := make(chan string, 1)
	failures := make(chan error, 1)

	opener := identity.PopupOpenerFunc(func(_ context.Context, authURL string) error {
		select {
		case urls <- authURL:
			return nil
		default:
			return errors.NewPopupBlockedError()
		}
	})

	goroutine.SafeGo(h.logger, name, func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.flowTimeout)
		defer cancel()
		if err := flow(ctx, opener); err != nil {
			if errors.ShouldLogAuthError(err) || !errors.IsAuthError(err) {
				h.logger.Warnw("popup flow failed", "flow", name, "error", err)
			}
			failures <- err
		}
	})

	timer := time.NewTimer(h.startTimeout)
	defer timer.Stop()

	select {
	case authURL := <-urls:
		utils.AcceptedResponse(c, FederatedStartResponse{AuthURL: authURL}, "complete the sign-in in the popup window")
	case err := <-failures:
		utils.ErrorResponseWithError(c, err)
	case <-timer.C:
		utils.ErrorResponseWithError(c, errors.NewOAuthError("google", "start", "timed out waiting for the consent URL"))
	case <-c.Request.Context().Done():
	}
}

func (h *AuthHandler) store(c *gin.Context) (SessionStore, bool) {
	store, ok := sessionStoreFrom(c)
	if !ok {
		h.logger.Errorw("identity store missing from request context", "path", c.Request.URL.Path)
		utils.ErrorResponseWithError(c, errors.NewInternalError("session unavailable"))
		return nil, false
	}
	return store, true
}

func (h *AuthHandler) logAuthFailure(msg string, err error) {
	if errors.IsAuthError(err) && !errors.ShouldLogAuthError(err) {
		return
	}
	if errors.IsValidationError(err) || errors.IsConflictError(err) {
		return
	}
	h.logger.Warnw(msg, "error", err)
}
