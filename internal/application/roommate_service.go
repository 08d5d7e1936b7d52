package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/campus-housing/internal/docstore"
)

// RoommateService owns the roommate request lifecycle and the connection
// graph. Per ordered pair the state machine is
// NONE -> REQUESTED -> CONNECTED, with decline/cancel and removal returning
// to NONE. Every multi-record mutation goes through one atomic batch, so a
// failed commit leaves no partial graph state visible.
type RoommateService struct {
	directory *Directory
	store     docstore.Store
	now       func() time.Time
	logger    *slog.Logger
}

// NewRoommateService wires dependencies for roommate graph operations.
func NewRoommateService(directory *Directory, store docstore.Store, now func() time.Time) *RoommateService {
	return NewRoommateServiceWithLogger(directory, store, now, nil)
}

// NewRoommateServiceWithLogger constructs the service with a specified logger.
func NewRoommateServiceWithLogger(directory *Directory, store docstore.Store, now func() time.Time, logger *slog.Logger) *RoommateService {
	if now == nil {
		now = time.Now
	}
	return &RoommateService{directory: directory, store: store, now: now, logger: defaultLogger(logger)}
}

func (s *RoommateService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoommateService", operation, attrs...)
}

// SendRequest records a pending roommate request from the principal to the
// target. The pair is mirrored atomically: the target appears in the sender's
// outgoing set exactly when the sender appears in the target's incoming set.
func (s *RoommateService) SendRequest(ctx context.Context, principal Principal, targetID string) (err error) {
	if s == nil {
		return fmt.Errorf("RoommateService is nil")
	}

	logger := s.loggerWith(ctx, "SendRequest",
		"principal_id", principal.UserID,
		"target_id", targetID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to send roommate request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "roommate request sent")
	}()

	if targetID == principal.UserID {
		return ErrInvalidRequest
	}

	self, err := s.directory.GetUser(ctx, principal.UserID)
	if err != nil {
		return err
	}
	target, err := s.directory.GetUser(ctx, targetID)
	if err != nil {
		return err
	}

	if containsString(self.Connections, targetID) {
		return ErrAlreadyConnected
	}
	if containsString(self.OutgoingRequests, targetID) || containsString(self.IncomingRequests, targetID) {
		return ErrRequestPending
	}

	stamp := s.now()
	writes := []docstore.Write{
		{
			Collection: collUsers,
			ID:         self.ID,
			Fields: map[string]any{
				"outgoingRequests": withString(self.OutgoingRequests, targetID),
				"updatedAt":        stamp,
			},
		},
		{
			Collection: collUsers,
			ID:         target.ID,
			Fields: map[string]any{
				"incomingRequests": withString(target.IncomingRequests, self.ID),
				"updatedAt":        stamp,
			},
		},
	}
	return s.commit(ctx, writes)
}

// AcceptRequest connects the principal with the requestor and collapses their
// two previously separate components into one fully connected clique. The
// room-reservation rule needs "the whole group" to be well defined, so a
// single new edge between two groups merges them pairwise, not just at the
// accepting pair. The full set of updated records is returned so callers can
// refresh their view without re-reading.
func (s *RoommateService) AcceptRequest(ctx context.Context, principal Principal, requestorID string) (updated []Student, err error) {
	if s == nil {
		return nil, fmt.Errorf("RoommateService is nil")
	}

	logger := s.loggerWith(ctx, "AcceptRequest",
		"principal_id", principal.UserID,
		"requestor_id", requestorID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to accept roommate request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("group_size", len(updated)).InfoContext(ctx, "roommate request accepted")
	}()

	self, err := s.directory.GetUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if !containsString(self.IncomingRequests, requestorID) {
		return nil, ErrNoPendingRequest
	}
	requestor, err := s.directory.GetUser(ctx, requestorID)
	if err != nil {
		return nil, err
	}

	selfComponent, _, err := componentOf(ctx, s.directory, self)
	if err != nil {
		return nil, err
	}
	requestorComponent, _, err := componentOf(ctx, s.directory, requestor)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]Student, len(selfComponent)+len(requestorComponent))
	for _, member := range selfComponent {
		merged[member.ID] = member
	}
	for _, member := range requestorComponent {
		merged[member.ID] = member
	}

	mergedIDs := make(map[string]struct{}, len(merged))
	for id := range merged {
		mergedIDs[id] = struct{}{}
	}

	stamp := s.now()
	writes := make([]docstore.Write, 0, len(merged))
	updated = make([]Student, 0, len(merged))
	for id, member := range merged {
		connections := make([]string, 0, len(merged)-1)
		for peer := range merged {
			if peer != id {
				connections = append(connections, peer)
			}
		}
		connections = sortStrings(connections)

		// Any request still pending between two members of the merged
		// clique is resolved by the merge; a user may never hold both a
		// connection and a request toward the same peer.
		incoming := withoutStrings(member.IncomingRequests, mergedIDs)
		outgoing := withoutStrings(member.OutgoingRequests, mergedIDs)

		member.Connections = connections
		member.IncomingRequests = incoming
		member.OutgoingRequests = outgoing
		member.UpdatedAt = stamp
		updated = append(updated, member)

		writes = append(writes, docstore.Write{
			Collection: collUsers,
			ID:         id,
			Fields: map[string]any{
				"connections":      connections,
				"incomingRequests": incoming,
				"outgoingRequests": outgoing,
				"updatedAt":        stamp,
			},
		})
	}

	if err := s.commit(ctx, writes); err != nil {
		return nil, err
	}
	sortStudents(updated)
	return updated, nil
}

// DeclineRequest removes a pending request addressed to the principal.
func (s *RoommateService) DeclineRequest(ctx context.Context, principal Principal, requestorID string) (err error) {
	if s == nil {
		return fmt.Errorf("RoommateService is nil")
	}

	logger := s.loggerWith(ctx, "DeclineRequest",
		"principal_id", principal.UserID,
		"requestor_id", requestorID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to decline roommate request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "roommate request declined")
	}()

	self, err := s.directory.GetUser(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if !containsString(self.IncomingRequests, requestorID) {
		return ErrNoPendingRequest
	}
	return s.removeRequestPair(ctx, requestorID, self.ID)
}

// CancelRequest withdraws a pending request the principal sent earlier.
func (s *RoommateService) CancelRequest(ctx context.Context, principal Principal, targetID string) (err error) {
	if s == nil {
		return fmt.Errorf("RoommateService is nil")
	}

	logger := s.loggerWith(ctx, "CancelRequest",
		"principal_id", principal.UserID,
		"target_id", targetID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel roommate request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "roommate request cancelled")
	}()

	self, err := s.directory.GetUser(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if !containsString(self.OutgoingRequests, targetID) {
		return ErrNoPendingRequest
	}
	return s.removeRequestPair(ctx, self.ID, targetID)
}

// removeRequestPair drops the pending pair fromID -> toID on both sides in
// one batch. Callers have already verified the pair exists on their own side;
// the peer's side is cleaned up even if a missing record left it dangling.
func (s *RoommateService) removeRequestPair(ctx context.Context, fromID, toID string) error {
	stamp := s.now()
	writes := make([]docstore.Write, 0, 2)

	if from, err := s.directory.GetUser(ctx, fromID); err == nil {
		writes = append(writes, docstore.Write{
			Collection: collUsers,
			ID:         from.ID,
			Fields: map[string]any{
				"outgoingRequests": withoutString(from.OutgoingRequests, toID),
				"updatedAt":        stamp,
			},
		})
	} else if !errors.Is(err, ErrRecordNotFound) {
		return err
	}

	if to, err := s.directory.GetUser(ctx, toID); err == nil {
		writes = append(writes, docstore.Write{
			Collection: collUsers,
			ID:         to.ID,
			Fields: map[string]any{
				"incomingRequests": withoutString(to.IncomingRequests, fromID),
				"updatedAt":        stamp,
			},
		})
	} else if !errors.Is(err, ErrRecordNotFound) {
		return err
	}

	return s.commit(ctx, writes)
}

// RemoveConnection removes the single edge between the principal and the
// peer. The rest of the clique is left as-is. While either party holds an
// active room reservation the edge is pinned: the group must cancel first.
func (s *RoommateService) RemoveConnection(ctx context.Context, principal Principal, peerID string) (err error) {
	if s == nil {
		return fmt.Errorf("RoommateService is nil")
	}

	logger := s.loggerWith(ctx, "RemoveConnection",
		"principal_id", principal.UserID,
		"peer_id", peerID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to remove connection", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "connection removed")
	}()

	self, err := s.directory.GetUser(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if !containsString(self.Connections, peerID) {
		return ErrInvalidRequest
	}
	peer, err := s.directory.GetUser(ctx, peerID)
	if err != nil {
		return err
	}

	if self.SelectedRoom != nil || peer.SelectedRoom != nil {
		return ErrRoomActive
	}

	stamp := s.now()
	writes := []docstore.Write{
		{
			Collection: collUsers,
			ID:         self.ID,
			Fields: map[string]any{
				"connections": withoutString(self.Connections, peerID),
				"updatedAt":   stamp,
			},
		},
		{
			Collection: collUsers,
			ID:         peer.ID,
			Fields: map[string]any{
				"connections": withoutString(peer.Connections, self.ID),
				"updatedAt":   stamp,
			},
		},
	}
	return s.commit(ctx, writes)
}

// ListIncomingRequests resolves the principal's pending requestors and
// annotates each with a compatibility comparison against the principal's own
// profile. Requestors whose records no longer exist are dropped silently.
func (s *RoommateService) ListIncomingRequests(ctx context.Context, principal Principal) (requests []IncomingRequest, err error) {
	if s == nil {
		return nil, fmt.Errorf("RoommateService is nil")
	}

	logger := s.loggerWith(ctx, "ListIncomingRequests",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list incoming requests", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(requests)).InfoContext(ctx, "incoming requests listed")
	}()

	self, err := s.directory.GetUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	requestors, err := s.directory.GetUsers(ctx, self.IncomingRequests)
	if err != nil {
		return nil, err
	}

	requests = make([]IncomingRequest, 0, len(requestors))
	for _, requestor := range requestors {
		requests = append(requests, IncomingRequest{
			Requestor:  requestor,
			Comparison: Compare(self, requestor),
		})
	}
	return requests, nil
}

// ListCandidates returns the students the principal could send a request to,
// filtered by the caller's constraints. Self, existing connections, and
// targets of outstanding outgoing requests are excluded before filtering.
func (s *RoommateService) ListCandidates(ctx context.Context, principal Principal, filter CandidateFilter) (candidates []Student, err error) {
	if s == nil {
		return nil, fmt.Errorf("RoommateService is nil")
	}

	logger := s.loggerWith(ctx, "ListCandidates",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list candidates", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(candidates)).InfoContext(ctx, "candidates listed")
	}()

	self, err := s.directory.GetUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	students, err := s.directory.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(self.Connections)+len(self.OutgoingRequests)+1)
	excluded[self.ID] = struct{}{}
	for _, id := range self.Connections {
		excluded[id] = struct{}{}
	}
	for _, id := range self.OutgoingRequests {
		excluded[id] = struct{}{}
	}

	eligible := make([]Student, 0, len(students))
	for _, student := range students {
		if _, skip := excluded[student.ID]; skip {
			continue
		}
		eligible = append(eligible, student)
	}

	return MatchCandidates(eligible, filter), nil
}

func (s *RoommateService) commit(ctx context.Context, writes []docstore.Write) error {
	if s.store == nil {
		return fmt.Errorf("store not configured")
	}
	if err := s.store.CommitBatch(ctx, writes); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return nil
}

func sortStudents(students []Student) {
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
}
