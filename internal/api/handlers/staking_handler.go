package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gorilla/websocket"

	"github.com/edinar-labs/flexible-staking/internal/session"
	"github.com/edinar-labs/flexible-staking/internal/utils/unitutil"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

// maxRequestBodyBytes bounds action request bodies; a valid one is a few dozen bytes.
const maxRequestBodyBytes = 1 << 10

// StakingSession is the part of a session the dashboard drives.
type StakingSession interface {
	Address() common.Address
	ContractAddress() common.Address
	Connected() bool
	UserInfo() session.UserInfo
	Submit(ctx context.Context, action session.Action, amount string) (*types.Receipt, error)
	Subscribe(fn func(session.UserInfo)) (unsubscribe func())
}

type ActionRequest struct {
	Amount string `json:"amount"`
}

type ActionResponse struct {
	Action      string `json:"action"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	Message     string `json:"message"`
}

type UserInfoResponse struct {
	Address           string    `json:"address"`
	Contract          string    `json:"contract"`
	Staked            string    `json:"staked"`
	PendingRewards    string    `json:"pending_rewards"`
	StakedWei         string    `json:"staked_wei"`
	PendingRewardsWei string    `json:"pending_rewards_wei"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type StakingHandler struct {
	session     StakingSession
	hub         *Hub
	upgrader    websocket.Upgrader
	unsubscribe func()
}

// NewStakingHandler serves the session over HTTP and streams its updates to hub.
func NewStakingHandler(s StakingSession, hub *Hub) *StakingHandler {
	h := &StakingHandler{
		session: s,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	h.unsubscribe = s.Subscribe(func(info session.UserInfo) {
		hub.Broadcast(WSMessage{Type: MessageTypeUserInfo, Payload: h.userInfoResponse(info)})
	})

	return h
}

// Close detaches the handler from the session.
func (h *StakingHandler) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
}

func (h *StakingHandler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	if !h.session.Connected() {
		writeError(w, http.StatusServiceUnavailable, session.ErrNotConnected)
		return
	}
	writeJSON(w, http.StatusOK, h.userInfoResponse(h.session.UserInfo()))
}

func (h *StakingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, session.ActionApprove)
}

func (h *StakingHandler) Stake(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, session.ActionStake)
}

func (h *StakingHandler) Unstake(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, session.ActionUnstake)
}

func (h *StakingHandler) Claim(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, session.ActionClaim)
}

func (h *StakingHandler) handleAction(w http.ResponseWriter, r *http.Request, action session.Action) {
	log := logger.WithComponent("staking_handler")

	var req ActionRequest
	if action.NeedsAmount() {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
	}

	receipt, err := h.session.Submit(r.Context(), action, req.Amount)
	if err != nil {
		log.Debug().Err(err).Str("action", string(action)).Msg("Action failed")
		writeError(w, statusForError(err), err)
		return
	}

	resp := ActionResponse{
		Action:  string(action),
		TxHash:  receipt.TxHash.Hex(),
		Message: "confirmed",
	}
	if receipt.BlockNumber != nil {
		resp.BlockNumber = receipt.BlockNumber.Uint64()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleWebSocket streams user info snapshots and alerts until the client leaves.
func (h *StakingHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log := logger.WithComponent("websocket")
		log.Debug().Err(err).Msg("Upgrade failed")
		return
	}

	h.hub.Serve(conn, WSMessage{
		Type:    MessageTypeUserInfo,
		Payload: h.userInfoResponse(h.session.UserInfo()),
	})
}

func (h *StakingHandler) userInfoResponse(info session.UserInfo) UserInfoResponse {
	return UserInfoResponse{
		Address:           h.session.Address().Hex(),
		Contract:          h.session.ContractAddress().Hex(),
		Staked:            info.StakedDisplay(),
		PendingRewards:    info.PendingRewardsDisplay(),
		StakedWei:         info.Staked.String(),
		PendingRewardsWei: info.PendingRewards.String(),
		UpdatedAt:         info.UpdatedAt,
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, session.ErrNotConnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrEmptyAmount),
		errors.Is(err, unitutil.ErrInvalidAmount),
		errors.Is(err, session.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrTransactionReverted):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log := logger.WithComponent("staking_handler")
		log.Error().Err(err).Msg("Response encode failed")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
