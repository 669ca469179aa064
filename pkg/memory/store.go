package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/db"
)

// Store is an in-memory db.Database implementation backing tests and the
// memory backend. All methods are safe for concurrent use; the claim path
// holds the write lock across its read-check-write, which gives the
// at-most-one-winner guarantee.
type Store struct {
	mu        sync.RWMutex
	members   map[string]model.Member
	instances map[string]model.WorkInstance
	occasions map[string]model.SelectionOccasion
	history   map[string]model.TurnOrderHistory
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		members:   make(map[string]model.Member),
		instances: make(map[string]model.WorkInstance),
		occasions: make(map[string]model.SelectionOccasion),
		history:   make(map[string]model.TurnOrderHistory),
	}
}

// ListMembers returns the group's members sorted by ID
func (s *Store) ListMembers(ctx context.Context, groupID string) ([]model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]model.Member, 0)
	for _, member := range s.members {
		if member.GroupID == groupID {
			members = append(members, cloneMember(member))
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

// GetMember returns one member scoped to the group
func (s *Store) GetMember(ctx context.Context, groupID, memberID string) (*model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	member, ok := s.members[memberID]
	if !ok || member.GroupID != groupID {
		return nil, db.ErrMemberNotFound
	}
	clone := cloneMember(member)
	return &clone, nil
}

// UpsertMember inserts or replaces a member record
func (s *Store) UpsertMember(ctx context.Context, member *model.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.members[member.ID] = cloneMember(*member)
	return nil
}

// GetInstance returns one work instance
func (s *Store) GetInstance(ctx context.Context, instanceID string) (*model.WorkInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instances[instanceID]
	if !ok {
		return nil, db.ErrInstanceNotFound
	}
	clone := cloneInstance(inst)
	return &clone, nil
}

// InsertInstances stores the given instances
func (s *Store) InsertInstances(ctx context.Context, instances []model.WorkInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range instances {
		s.instances[instances[i].ID] = cloneInstance(instances[i])
	}
	return nil
}

// ListInstancesBetween returns the group's instances scheduled inside
// [from, to], sorted chronologically
func (s *Store) ListInstancesBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	instances := make([]model.WorkInstance, 0)
	for _, inst := range s.instances {
		if inst.GroupID != groupID {
			continue
		}
		if inst.ScheduledAt.Before(from) || inst.ScheduledAt.After(to) {
			continue
		}
		instances = append(instances, cloneInstance(inst))
	}
	sortInstances(instances)
	return instances, nil
}

// ListUnassignedBetween returns the group's unassigned instances scheduled
// inside [from, to], sorted chronologically
func (s *Store) ListUnassignedBetween(ctx context.Context, groupID string, from, to time.Time) ([]model.WorkInstance, error) {
	instances, err := s.ListInstancesBetween(ctx, groupID, from, to)
	if err != nil {
		return nil, err
	}

	unassigned := make([]model.WorkInstance, 0, len(instances))
	for _, inst := range instances {
		if inst.AssignedMemberID == "" && inst.Status == model.InstanceUnassigned {
			unassigned = append(unassigned, inst)
		}
	}
	return unassigned, nil
}

// ListCompletedPoints returns one points entry per completed instance in the
// group, skipping completions before since (zero since means no cutoff)
func (s *Store) ListCompletedPoints(ctx context.Context, groupID string, since time.Time) ([]model.PointsEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.PointsEntry, 0)
	for _, inst := range s.instances {
		if inst.GroupID != groupID || inst.Status != model.InstanceCompleted {
			continue
		}
		if inst.CompletedAt == nil || inst.AssignedMemberID == "" {
			continue
		}
		if !since.IsZero() && inst.CompletedAt.Before(since) {
			continue
		}
		entries = append(entries, model.PointsEntry{
			MemberID:    inst.AssignedMemberID,
			Points:      inst.PointValue,
			CompletedAt: *inst.CompletedAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CompletedAt.Equal(entries[j].CompletedAt) {
			return entries[i].MemberID < entries[j].MemberID
		}
		return entries[i].CompletedAt.Before(entries[j].CompletedAt)
	})
	return entries, nil
}

// ClaimInstance assigns the instance to the member if and only if it is
// still unassigned
func (s *Store) ClaimInstance(ctx context.Context, instanceID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instances[instanceID]
	if !ok {
		return db.ErrInstanceNotFound
	}
	if inst.AssignedMemberID != "" {
		return db.ErrInstanceUnavailable
	}

	inst.AssignedMemberID = memberID
	inst.Status = model.InstanceAssigned
	s.instances[instanceID] = inst
	return nil
}

// ReleaseInstance returns the instance to the unassigned pool
func (s *Store) ReleaseInstance(ctx context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instances[instanceID]
	if !ok {
		return db.ErrInstanceNotFound
	}

	inst.AssignedMemberID = ""
	inst.Status = model.InstanceUnassigned
	s.instances[instanceID] = inst
	return nil
}

// InsertOccasion stores a new selection occasion
func (s *Store) InsertOccasion(ctx context.Context, occasion *model.SelectionOccasion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.occasions[occasion.ID] = cloneOccasion(*occasion)
	return nil
}

// GetOccasion returns one selection occasion
func (s *Store) GetOccasion(ctx context.Context, occasionID string) (*model.SelectionOccasion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	occasion, ok := s.occasions[occasionID]
	if !ok {
		return nil, db.ErrOccasionNotFound
	}
	clone := cloneOccasion(occasion)
	return &clone, nil
}

// UpdateOccasion replaces a stored occasion
func (s *Store) UpdateOccasion(ctx context.Context, occasion *model.SelectionOccasion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.occasions[occasion.ID]; !ok {
		return db.ErrOccasionNotFound
	}
	s.occasions[occasion.ID] = cloneOccasion(*occasion)
	return nil
}

// DeleteOccasion removes a stored occasion
func (s *Store) DeleteOccasion(ctx context.Context, occasionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.occasions[occasionID]; !ok {
		return db.ErrOccasionNotFound
	}
	delete(s.occasions, occasionID)
	return nil
}

// ListOccasions returns the group's occasions sorted by creation time
func (s *Store) ListOccasions(ctx context.Context, groupID string) ([]model.SelectionOccasion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	occasions := make([]model.SelectionOccasion, 0)
	for _, occasion := range s.occasions {
		if occasion.GroupID == groupID {
			occasions = append(occasions, cloneOccasion(occasion))
		}
	}
	sort.Slice(occasions, func(i, j int) bool {
		if occasions[i].CreatedAt.Equal(occasions[j].CreatedAt) {
			return occasions[i].ID < occasions[j].ID
		}
		return occasions[i].CreatedAt.Before(occasions[j].CreatedAt)
	})
	return occasions, nil
}

// LatestHistory returns the group's most recently completed history record
func (s *Store) LatestHistory(ctx context.Context, groupID string) (*model.TurnOrderHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.TurnOrderHistory
	for id := range s.history {
		record := s.history[id]
		if record.GroupID != groupID {
			continue
		}
		if latest == nil || record.CompletedAt.After(latest.CompletedAt) {
			clone := cloneHistory(record)
			latest = &clone
		}
	}
	if latest == nil {
		return nil, db.ErrHistoryNotFound
	}
	return latest, nil
}

// HistoryForOccasion returns the record written for one occasion
func (s *Store) HistoryForOccasion(ctx context.Context, occasionID string) (*model.TurnOrderHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id := range s.history {
		record := s.history[id]
		if record.OccasionID == occasionID {
			clone := cloneHistory(record)
			return &clone, nil
		}
	}
	return nil, db.ErrHistoryNotFound
}

// InsertHistory stores a history record unless the occasion already has one
func (s *Store) InsertHistory(ctx context.Context, record *model.TurnOrderHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.history {
		if existing.OccasionID == record.OccasionID {
			return nil
		}
	}
	s.history[record.ID] = cloneHistory(*record)
	return nil
}

func sortInstances(instances []model.WorkInstance) {
	sort.Slice(instances, func(i, j int) bool {
		if instances[i].ScheduledAt.Equal(instances[j].ScheduledAt) {
			return instances[i].ID < instances[j].ID
		}
		return instances[i].ScheduledAt.Before(instances[j].ScheduledAt)
	})
}

func cloneMember(member model.Member) model.Member {
	clone := member
	clone.Availability = append([]model.BlackoutRule(nil), member.Availability...)
	if member.Limits != nil {
		limits := *member.Limits
		clone.Limits = &limits
	}
	return clone
}

func cloneInstance(inst model.WorkInstance) model.WorkInstance {
	clone := inst
	if inst.CompletedAt != nil {
		completedAt := *inst.CompletedAt
		clone.CompletedAt = &completedAt
	}
	return clone
}

func cloneOccasion(occasion model.SelectionOccasion) model.SelectionOccasion {
	clone := occasion
	clone.MemberIDs = append([]string(nil), occasion.MemberIDs...)
	clone.InstancePool = append([]string(nil), occasion.InstancePool...)
	clone.Order = append([]string(nil), occasion.Order...)
	clone.Picks = append([]model.OccasionPick(nil), occasion.Picks...)
	if occasion.Quotas != nil {
		clone.Quotas = make(map[string]float64, len(occasion.Quotas))
		for id, quota := range occasion.Quotas {
			clone.Quotas[id] = quota
		}
	}
	if occasion.CompletedAt != nil {
		completedAt := *occasion.CompletedAt
		clone.CompletedAt = &completedAt
	}
	return clone
}

func cloneHistory(record model.TurnOrderHistory) model.TurnOrderHistory {
	clone := record
	clone.FinalOrder = append([]string(nil), record.FinalOrder...)
	if record.SelectionsPerMember != nil {
		clone.SelectionsPerMember = make(map[string]int, len(record.SelectionsPerMember))
		for id, count := range record.SelectionsPerMember {
			clone.SelectionsPerMember[id] = count
		}
	}
	if record.PointsPickedPerMember != nil {
		clone.PointsPickedPerMember = make(map[string]float64, len(record.PointsPickedPerMember))
		for id, points := range record.PointsPickedPerMember {
			clone.PointsPickedPerMember[id] = points
		}
	}
	return clone
}
