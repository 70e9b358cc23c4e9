package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edinar-labs/flexible-staking/internal/session"
	"github.com/edinar-labs/flexible-staking/internal/utils/unitutil"
)

var (
	walletAddr   = common.HexToAddress("0x0987654321098765432109876543210987654321")
	contractAddr = common.HexToAddress("0x1234567890123456789012345678901234567890")
)

type submission struct {
	action session.Action
	amount string
}

type fakeSession struct {
	mu          sync.Mutex
	info        session.UserInfo
	err         error
	submissions []submission
	subscriber  func(session.UserInfo)
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		info: session.UserInfo{
			Staked:         big.NewInt(15e17),
			PendingRewards: big.NewInt(25e15),
			UpdatedAt:      time.Unix(1700000000, 0).UTC(),
		},
	}
}

func (f *fakeSession) Address() common.Address { return walletAddr }
func (f *fakeSession) ContractAddress() common.Address { return contractAddr }
func (f *fakeSession) Connected() bool { return true }
func (f *fakeSession) UserInfo() session.UserInfo { return f.info }

func (f *fakeSession) Submit(ctx context.Context, action session.Action, amount string) (*types.Receipt, error) {
	f.mu.Lock()
	f.submissions = append(f.submissions, submission{action: action, amount: amount})
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      common.HexToHash("0xabc"),
		BlockNumber: big.NewInt(42),
	}, nil
}

func (f *fakeSession) Subscribe(fn func(session.UserInfo)) func() {
	f.subscriber = fn
	return func() { f.subscriber = nil }
}

func TestGetUserInfo(t *testing.T) {
	h := NewStakingHandler(newFakeSession(), NewHub())

	rec := httptest.NewRecorder()
	h.GetUserInfo(rec, httptest.NewRequest(http.MethodGet, "/api/v1/user-info", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp UserInfoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, walletAddr.Hex(), resp.Address)
	assert.Equal(t, contractAddr.Hex(), resp.Contract)
	assert.Equal(t, "1.5", resp.Staked)
	assert.Equal(t, "0.025", resp.PendingRewards)
	assert.Equal(t, "1500000000000000000", resp.StakedWei)
}

func TestHandleAction(t *testing.T) {
	tests := []struct {
		name       string
		handler    func(h *StakingHandler) http.HandlerFunc
		body       string
		err        error
		wantStatus int
		wantAction session.Action
		wantAmount string
	}{
		{
			name:       "stake",
			handler:    func(h *StakingHandler) http.HandlerFunc { return h.Stake },
			body:       `{"amount":"1.5"}`,
			wantStatus: http.StatusOK,
			wantAction: session.ActionStake,
			wantAmount: "1.5",
		},
		{
			name:       "claim ignores body",
			handler:    func(h *StakingHandler) http.HandlerFunc { return h.Claim },
			wantStatus: http.StatusOK,
			wantAction: session.ActionClaim,
		},
		{
			name:       "malformed body",
			handler:    func(h *StakingHandler) http.HandlerFunc { return h.Approve },
			body:       `{"amount":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "oversized body",
			handler:    func(h *StakingHandler) http.HandlerFunc { return h.Stake },
			body:       `{"amount":"1","memo":"` + strings.Repeat("x", 2*maxRequestBodyBytes) + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty amount",
			handler:    func(h *StakingHandler) http.HandlerFunc { return h.Unstake },
			body:       `{"amount":""}`,
			err:        session.ErrEmptyAmount,
			wantStatus: http.StatusBadRequest,
			wantAction: session.ActionUnstake,
		},
		{
			name:       "invalid amount",
			handler:    func(h *StakingHandler) http.HandlerFunc { return h.Stake },
			body:       `{"amount":"abc"}`,
			err:        fmt.Errorf("%w: not a number", unitutil.ErrInvalidAmount),
			wantStatus: http.StatusBadRequest,
			wantAction: session.ActionStake,
			wantAmount: "abc",
		},
		{
			name:       "reverted",
			handler:    func(h *StakingHandler) http.HandlerFunc { return h.Stake },
			body:       `{"amount":"1"}`,
			err:        session.ErrTransactionReverted,
			wantStatus: http.StatusUnprocessableEntity,
			wantAction: session.ActionStake,
			wantAmount: "1",
		},
		{
			name:       "rpc failure",
			handler:    func(h *StakingHandler) http.HandlerFunc { return h.Claim },
			err:        fmt.Errorf("dial tcp: connection refused"),
			wantStatus: http.StatusBadGateway,
			wantAction: session.ActionClaim,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeSession()
			fake.err = tt.err
			h := NewStakingHandler(fake, NewHub())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			tt.handler(h)(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantAction == "" {
				assert.Empty(t, fake.submissions)
				return
			}
			require.Len(t, fake.submissions, 1)
			assert.Equal(t, tt.wantAction, fake.submissions[0].action)
			assert.Equal(t, tt.wantAmount, fake.submissions[0].amount)

			if tt.wantStatus == http.StatusOK {
				var resp ActionResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, uint64(42), resp.BlockNumber)
				assert.Equal(t, string(tt.wantAction), resp.Action)
			} else {
				var resp ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestHandleWebSocket(t *testing.T) {
	fake := newFakeSession()
	hub := NewHub()
	h := NewStakingHandler(fake, hub)
	defer h.Close()

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeUserInfo, msg.Type)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NotNil(t, fake.subscriber)
	fake.subscriber(session.UserInfo{Staked: big.NewInt(3e18), PendingRewards: big.NewInt(0)})

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeUserInfo, msg.Type)
	var info UserInfoResponse
	require.NoError(t, json.Unmarshal(msg.Payload, &info))
	assert.Equal(t, "3.0", info.Staked)

	hub.Failure(session.ActionStake, fmt.Errorf("boom"))

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeAlert, msg.Type)
	var alert Alert
	require.NoError(t, json.Unmarshal(msg.Payload, &alert))
	assert.Equal(t, "error", alert.Level)
	assert.Equal(t, "stake", alert.Action)
	assert.Equal(t, "boom", alert.Error)

	hub.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	hub.Success(session.ActionClaim, "🎉 Rewards claimed!")
	assert.Zero(t, hub.Clients())
}
