package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/dto"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/engine"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/wallet"
)

var errValueMismatch = errors.New("transferred value must equal bid amount")

// maxDurationSeconds é o maior prazo que cabe em time.Duration
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

// biddingDuration converte segundos sem overflow; fora da faixa vira
// ErrInvalidDuration e zero ou negativo é rejeitado pelo engine
func biddingDuration(seconds int64) (time.Duration, error) {
	if seconds > maxDurationSeconds {
		return 0, engine.ErrInvalidDuration
	}
	if seconds <= 0 {
		return 0, nil
	}
	return time.Duration(seconds) * time.Second, nil
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(w, r)
	if !ok {
		return
	}
	if err := s.engine.Register(r.Context(), who); err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"identity": who})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := paging(w, r)
	if !ok {
		return
	}
	ids, err := s.engine.Identities(offset, limit)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.IdentitiesResponse{Identities: ids})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.engine.User(r.PathValue("identity"))
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) transferOwnership(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(w, r)
	if !ok {
		return
	}
	var req dto.TransferOwnershipRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.engine.TransferOwnership(r.Context(), who, req.NewOwner); err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"owner": req.NewOwner})
}

func (s *Server) createAuction(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(w, r)
	if !ok {
		return
	}
	var req dto.CreateAuctionRequest
	if !decode(w, r, &req) {
		return
	}
	duration, err := biddingDuration(req.BiddingDurationSeconds)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	id, err := s.engine.CreateAuction(r.Context(), who, req.Name, req.Description, duration, req.ReservePrice)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	a, err := s.engine.Auction(id)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CreateAuctionResponse{AuctionID: id, EndTime: a.EndTime})
}

func (s *Server) listAuctions(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := paging(w, r)
	if !ok {
		return
	}
	ids, err := s.engine.AuctionIDs(offset, limit)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AuctionIDsResponse{AuctionIDs: ids})
}

func (s *Server) getAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	a, err := s.engine.Auction(id)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// placeBid: hold no wallet -> engine.PlaceBid -> capture (aceito) ou release (rejeitado)
func (s *Server) placeBid(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	var req dto.PlaceBidRequest
	if !decode(w, r, &req) {
		return
	}
	if req.TransferredValue != req.Amount {
		writeErr(w, http.StatusBadRequest, "rejected", errValueMismatch)
		return
	}

	// 1) Bloqueia o valor anexado (external_ref = id do lance)
	ref := "bid:" + uuid.NewString()
	if _, err := s.wallet.Hold(r.Context(), who, req.Amount, ref); err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			writeErr(w, http.StatusPaymentRequired, "rejected", err)
			return
		}
		s.log.Warn("wallet hold failed", zap.String("bidder", who), zap.Error(err))
		writeErr(w, http.StatusBadGateway, "transfer_failed", err)
		return
	}

	// 2) Aplica o lance
	receipt, err := s.engine.PlaceBid(r.Context(), id, who, req.Amount)
	if err != nil {
		if rerr := s.wallet.Release(r.Context(), who, ref); rerr != nil {
			s.log.Error("release hold after rejected bid",
				zap.String("bidder", who),
				zap.String("ref", ref),
				zap.Error(rerr),
			)
		}
		s.writeEngineErr(w, err)
		return
	}

	// 3) Lance aceito: o valor passa a ser custodiado pelo leilão
	if cerr := s.wallet.Capture(r.Context(), who, ref); cerr != nil {
		s.log.Error("capture hold after accepted bid",
			zap.Uint64("auction_id", id),
			zap.String("bidder", who),
			zap.String("ref", ref),
			zap.Error(cerr),
		)
	}

	writeJSON(w, http.StatusCreated, dto.PlaceBidResponse{
		AuctionID: receipt.AuctionID,
		Bidder:    receipt.Bidder,
		Amount:    receipt.Amount,
		EndTime:   receipt.EndTime,
		Extended:  receipt.Extended,
		HoldRef:   ref,
	})
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	amount, err := s.engine.Withdraw(r.Context(), id, who)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WithdrawResponse{AuctionID: id, Amount: amount, Status: "PAID"})
}

func (s *Server) settle(w http.ResponseWriter, r *http.Request) {
	s.payout(w, r, false)
}

func (s *Server) retryPayout(w http.ResponseWriter, r *http.Request) {
	s.payout(w, r, true)
}

func (s *Server) payout(w http.ResponseWriter, r *http.Request, retry bool) {
	who, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	var err error
	if retry {
		err = s.engine.RetryPayout(r.Context(), id, who)
	} else {
		err = s.engine.Settle(r.Context(), id, who)
	}
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	a, err := s.engine.Auction(id)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SettleResponse{
		AuctionID: id,
		Winner:    a.Winner,
		Amount:    a.FinalPrice,
		Status:    "SETTLED",
	})
}

func (s *Server) escrowBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	identity := r.URL.Query().Get("identity")
	if identity == "" {
		writeErr(w, http.StatusBadRequest, "rejected", errors.New("identity required"))
		return
	}
	bal, err := s.engine.EscrowBalance(id, identity)
	if err != nil {
		s.writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.EscrowResponse{AuctionID: id, Identity: identity, Balance: bal})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	n := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "rejected", errBadPaging)
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, s.engine.Leaderboard(n))
}

func (s *Server) standing(w http.ResponseWriter, r *http.Request) {
	st, ok := s.engine.Standing(r.PathValue("identity"))
	if !ok {
		writeErr(w, http.StatusNotFound, "rejected", errors.New("identity has no bids"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}
