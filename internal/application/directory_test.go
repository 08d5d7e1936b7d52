package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/campus-housing/internal/docstore"
	"github.com/example/campus-housing/internal/testfixtures"
)

func TestDirectory_GetUser(t *testing.T) {
	t.Run("fills defaults for sparse records", func(t *testing.T) {
		// A record written before the roommate fields existed: only the
		// identity fields are present.
		directory, _ := newTestDirectory(t, docstore.Write{
			Collection: testfixtures.CollectionUsers,
			ID:         "sparse",
			Fields: map[string]any{
				"firstName": "Sam",
				"lastName":  "Sparse",
				"email":     "sparse@campus.example.edu",
			},
		})

		student, err := directory.GetUser(context.Background(), "sparse")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if student.Role != RoleStudent {
			t.Fatalf("expected default student role, got %q", student.Role)
		}
		if student.IncomingRequests == nil || student.OutgoingRequests == nil || student.Connections == nil {
			t.Fatalf("expected empty graph sets, got %+v", student)
		}
		if len(student.Connections) != 0 {
			t.Fatalf("expected no connections, got %v", student.Connections)
		}
		if student.Preferences != nil || student.SelectedRoom != nil || student.TimeSlot != nil {
			t.Fatalf("expected optional fields unset, got %+v", student)
		}
	})

	t.Run("maps a missing record to ErrRecordNotFound", func(t *testing.T) {
		directory, _ := newTestDirectory(t)

		_, err := directory.GetUser(context.Background(), "ghost")
		if !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})
}

func TestDirectory_GetUsers(t *testing.T) {
	t.Run("silently drops unknown ids", func(t *testing.T) {
		alice := testfixtures.NewStudentFixture(testfixtures.WithStudentID("alice"))
		bob := testfixtures.NewStudentFixture(testfixtures.WithStudentID("bob"))
		directory, _ := newTestDirectory(t, alice.Write(), bob.Write())

		students, err := directory.GetUsers(context.Background(), []string{"alice", "ghost", "bob"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(students) != 2 {
			t.Fatalf("expected 2 students, got %d", len(students))
		}
		if students[0].ID != "alice" || students[1].ID != "bob" {
			t.Fatalf("expected input order preserved, got %v", memberIDs(students))
		}
	})
}

func TestDirectory_GetRoom(t *testing.T) {
	t.Run("returns the store revision for concurrency guards", func(t *testing.T) {
		room := testfixtures.NewRoomFixture(testfixtures.WithRoomDorm("dorm-1"), testfixtures.WithRoomID("room-1"))
		directory, store := newTestDirectory(t, room.Write())

		_, first, err := directory.GetRoom(context.Background(), "dorm-1", "room-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		update := docstore.Write{
			Collection: testfixtures.CollectionRooms,
			ID:         "dorm-1/room-1",
			Fields:     map[string]any{"price": 4300.0},
		}
		if err := store.CommitBatch(context.Background(), []docstore.Write{update}); err != nil {
			t.Fatalf("failed to update room: %v", err)
		}

		_, second, err := directory.GetRoom(context.Background(), "dorm-1", "room-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if second <= first {
			t.Fatalf("expected revision to advance, got %d then %d", first, second)
		}
	})
}

func TestDirectory_ListRooms(t *testing.T) {
	t.Run("orders by dorm, floor, then room number", func(t *testing.T) {
		r1 := testfixtures.NewRoomFixture(testfixtures.WithRoomDorm("dorm-b"), testfixtures.WithRoomID("b1"), testfixtures.WithRoomFloor(1))
		r2 := testfixtures.NewRoomFixture(testfixtures.WithRoomDorm("dorm-a"), testfixtures.WithRoomID("a2"), testfixtures.WithRoomFloor(2))
		r3 := testfixtures.NewRoomFixture(testfixtures.WithRoomDorm("dorm-a"), testfixtures.WithRoomID("a1"), testfixtures.WithRoomFloor(1))
		directory, _ := newTestDirectory(t, r1.Write(), r2.Write(), r3.Write())

		rooms, err := directory.ListRooms(context.Background(), "")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(rooms) != 3 {
			t.Fatalf("expected 3 rooms, got %d", len(rooms))
		}
		if rooms[0].RoomID != "a1" || rooms[1].RoomID != "a2" || rooms[2].RoomID != "b1" {
			t.Fatalf("unexpected order: %s %s %s", rooms[0].RoomID, rooms[1].RoomID, rooms[2].RoomID)
		}
	})

	t.Run("restricts to one dorm", func(t *testing.T) {
		r1 := testfixtures.NewRoomFixture(testfixtures.WithRoomDorm("dorm-a"), testfixtures.WithRoomID("a1"))
		r2 := testfixtures.NewRoomFixture(testfixtures.WithRoomDorm("dorm-b"), testfixtures.WithRoomID("b1"))
		directory, _ := newTestDirectory(t, r1.Write(), r2.Write())

		rooms, err := directory.ListRooms(context.Background(), "dorm-b")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(rooms) != 1 || rooms[0].RoomID != "b1" {
			t.Fatalf("expected only dorm-b rooms, got %v", rooms)
		}
	})
}

func TestDirectory_FindUserByEmail(t *testing.T) {
	t.Run("matches case-insensitively", func(t *testing.T) {
		alice := testfixtures.NewStudentFixture(testfixtures.WithStudentID("alice"), testfixtures.WithStudentEmail("alice@campus.example.edu"))
		directory, _ := newTestDirectory(t, alice.Write())

		student, err := directory.FindUserByEmail(context.Background(), "Alice@Campus.Example.EDU")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if student.ID != "alice" {
			t.Fatalf("expected alice, got %s", student.ID)
		}
	})

	t.Run("maps no match to ErrRecordNotFound", func(t *testing.T) {
		directory, _ := newTestDirectory(t)

		if _, err := directory.FindUserByEmail(context.Background(), "nobody@campus.example.edu"); !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})
}

func TestComponentOf(t *testing.T) {
	t.Run("walks transitively and reports missing members", func(t *testing.T) {
		// alice-bob-carol form a chain; bob also references a vanished peer.
		alice := testfixtures.NewStudentFixture(testfixtures.WithStudentID("alice"), testfixtures.WithConnections("bob"))
		bob := testfixtures.NewStudentFixture(testfixtures.WithStudentID("bob"), testfixtures.WithConnections("alice", "carol", "ghost"))
		carol := testfixtures.NewStudentFixture(testfixtures.WithStudentID("carol"), testfixtures.WithConnections("bob"))
		loner := testfixtures.NewStudentFixture(testfixtures.WithStudentID("loner"))
		directory, _ := newTestDirectory(t, alice.Write(), bob.Write(), carol.Write(), loner.Write())

		start := mustGetStudent(t, directory, "alice")
		members, missing, err := componentOf(context.Background(), directory, start)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if got := memberIDs(members); len(got) != 3 || got[0] != "alice" || got[1] != "bob" || got[2] != "carol" {
			t.Fatalf("expected the chain sorted, got %v", got)
		}
		if len(missing) != 1 || missing[0] != "ghost" {
			t.Fatalf("expected ghost reported missing, got %v", missing)
		}
	})

	t.Run("returns a singleton for an unconnected student", func(t *testing.T) {
		loner := testfixtures.NewStudentFixture(testfixtures.WithStudentID("loner"))
		directory, _ := newTestDirectory(t, loner.Write())

		start := mustGetStudent(t, directory, "loner")
		members, missing, err := componentOf(context.Background(), directory, start)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(members) != 1 || members[0].ID != "loner" {
			t.Fatalf("expected singleton, got %v", memberIDs(members))
		}
		if len(missing) != 0 {
			t.Fatalf("expected nothing missing, got %v", missing)
		}
	})
}
