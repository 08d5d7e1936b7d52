package application

import (
	"context"
	"sort"
)

// componentOf resolves the connected component containing start: the student
// plus everyone transitively reachable through Connections. The walk is an
// explicit breadth-first traversal over adjacency sets, run once per
// operation rather than re-derived in nested loops.
//
// Ids whose records no longer exist are dropped by the directory; they come
// back in missing so the caller can surface a data-integrity warning.
func componentOf(ctx context.Context, dir *Directory, start Student) (members []Student, missing []string, err error) {
	visited := map[string]Student{start.ID: start}
	missingSeen := map[string]struct{}{}
	frontier := []string{start.ID}

	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			for _, peer := range visited[id].Connections {
				if _, ok := visited[peer]; ok {
					continue
				}
				if _, ok := missingSeen[peer]; ok {
					continue
				}
				next = append(next, peer)
			}
		}
		if len(next) == 0 {
			break
		}

		next = uniqueStrings(next)
		resolved, err := dir.GetUsers(ctx, next)
		if err != nil {
			return nil, nil, err
		}

		found := make(map[string]struct{}, len(resolved))
		frontier = frontier[:0]
		for _, student := range resolved {
			found[student.ID] = struct{}{}
			visited[student.ID] = student
			frontier = append(frontier, student.ID)
		}
		for _, id := range next {
			if _, ok := found[id]; !ok {
				missingSeen[id] = struct{}{}
			}
		}
	}

	members = make([]Student, 0, len(visited))
	for _, student := range visited {
		members = append(members, student)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	missing = make([]string, 0, len(missingSeen))
	for id := range missingSeen {
		missing = append(missing, id)
	}
	sort.Strings(missing)

	return members, missing, nil
}

// memberIDs projects a component to its sorted id set.
func memberIDs(members []Student) []string {
	ids := make([]string, len(members))
	for i, member := range members {
		ids[i] = member.ID
	}
	return ids
}
