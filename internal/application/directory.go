package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/campus-housing/internal/docstore"
)

// Directory resolves typed user, room, and dorm records from the document
// store. It is a pure read layer: every other service depends on it and none
// of its methods write. Lookup failures surface before any caller attempts a
// mutation, so in-flight batches fail closed.
type Directory struct {
	store docstore.Store
}

// NewDirectory constructs a directory over the given store.
func NewDirectory(store docstore.Store) *Directory {
	return &Directory{store: store}
}

// GetUser resolves a single student record.
func (d *Directory) GetUser(ctx context.Context, id string) (Student, error) {
	if d == nil || d.store == nil {
		return Student{}, fmt.Errorf("directory not configured")
	}
	doc, err := d.store.Get(ctx, collUsers, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Student{}, ErrRecordNotFound
		}
		return Student{}, fmt.Errorf("directory: get user %s: %w", id, err)
	}
	return decodeStudent(doc)
}

// GetUsers resolves the given ids, silently dropping ids whose records no
// longer exist. Callers that derived the id list from persisted state should
// treat a short result as a data-integrity signal.
func (d *Directory) GetUsers(ctx context.Context, ids []string) ([]Student, error) {
	if d == nil || d.store == nil {
		return nil, fmt.Errorf("directory not configured")
	}
	docs, err := d.store.GetMany(ctx, collUsers, ids)
	if err != nil {
		return nil, fmt.Errorf("directory: get users: %w", err)
	}
	students := make([]Student, 0, len(docs))
	for _, doc := range docs {
		student, err := decodeStudent(doc)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, nil
}

// GetRoom resolves a single room record together with its current store
// revision, which mutating callers use as an optimistic-concurrency guard.
func (d *Directory) GetRoom(ctx context.Context, dormID, roomID string) (Room, int64, error) {
	if d == nil || d.store == nil {
		return Room{}, 0, fmt.Errorf("directory not configured")
	}
	doc, err := d.store.Get(ctx, collRooms, RoomDocID(dormID, roomID))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Room{}, 0, ErrRecordNotFound
		}
		return Room{}, 0, fmt.Errorf("directory: get room %s/%s: %w", dormID, roomID, err)
	}
	room, err := decodeRoom(doc)
	if err != nil {
		return Room{}, 0, err
	}
	return room, doc.Revision, nil
}

// ListRooms returns every room, optionally restricted to one dorm, ordered by
// dorm, floor, then room number.
func (d *Directory) ListRooms(ctx context.Context, dormID string) ([]Room, error) {
	if d == nil || d.store == nil {
		return nil, fmt.Errorf("directory not configured")
	}
	docs, err := d.store.Query(ctx, collRooms, nil)
	if err != nil {
		return nil, fmt.Errorf("directory: list rooms: %w", err)
	}
	rooms := make([]Room, 0, len(docs))
	for _, doc := range docs {
		room, err := decodeRoom(doc)
		if err != nil {
			return nil, err
		}
		if dormID != "" && room.DormID != dormID {
			continue
		}
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].DormID != rooms[j].DormID {
			return rooms[i].DormID < rooms[j].DormID
		}
		if rooms[i].Floor != rooms[j].Floor {
			return rooms[i].Floor < rooms[j].Floor
		}
		return rooms[i].RoomNumber < rooms[j].RoomNumber
	})
	return rooms, nil
}

// GetDorm resolves a single dorm record.
func (d *Directory) GetDorm(ctx context.Context, id string) (Dorm, error) {
	if d == nil || d.store == nil {
		return Dorm{}, fmt.Errorf("directory not configured")
	}
	doc, err := d.store.Get(ctx, collDorms, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Dorm{}, ErrRecordNotFound
		}
		return Dorm{}, fmt.Errorf("directory: get dorm %s: %w", id, err)
	}
	return decodeDorm(doc)
}

// ListDorms returns every dorm ordered by name.
func (d *Directory) ListDorms(ctx context.Context) ([]Dorm, error) {
	if d == nil || d.store == nil {
		return nil, fmt.Errorf("directory not configured")
	}
	docs, err := d.store.Query(ctx, collDorms, nil)
	if err != nil {
		return nil, fmt.Errorf("directory: list dorms: %w", err)
	}
	dorms := make([]Dorm, 0, len(docs))
	for _, doc := range docs {
		dorm, err := decodeDorm(doc)
		if err != nil {
			return nil, err
		}
		dorms = append(dorms, dorm)
	}
	sort.Slice(dorms, func(i, j int) bool {
		if strings.EqualFold(dorms[i].Name, dorms[j].Name) {
			return dorms[i].ID < dorms[j].ID
		}
		return strings.ToLower(dorms[i].Name) < strings.ToLower(dorms[j].Name)
	})
	return dorms, nil
}

// ListStudents returns every user with the student role, ordered by id.
func (d *Directory) ListStudents(ctx context.Context) ([]Student, error) {
	if d == nil || d.store == nil {
		return nil, fmt.Errorf("directory not configured")
	}
	docs, err := d.store.Query(ctx, collUsers, nil)
	if err != nil {
		return nil, fmt.Errorf("directory: list students: %w", err)
	}
	students := make([]Student, 0, len(docs))
	for _, doc := range docs {
		student, err := decodeStudent(doc)
		if err != nil {
			return nil, err
		}
		if student.Role != RoleStudent {
			continue
		}
		students = append(students, student)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

// FindUserByEmail resolves a user by email address, case-insensitively.
func (d *Directory) FindUserByEmail(ctx context.Context, email string) (Student, error) {
	if d == nil || d.store == nil {
		return Student{}, fmt.Errorf("directory not configured")
	}
	lower := strings.ToLower(strings.TrimSpace(email))
	docs, err := d.store.Query(ctx, collUsers, func(doc docstore.Document) bool {
		value, _ := doc.Fields["email"].(string)
		return strings.ToLower(value) == lower
	})
	if err != nil {
		return Student{}, fmt.Errorf("directory: find user by email: %w", err)
	}
	if len(docs) == 0 {
		return Student{}, ErrRecordNotFound
	}
	return decodeStudent(docs[0])
}
