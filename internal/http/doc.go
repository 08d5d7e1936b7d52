// Package http provides HTTP handlers and middleware for the campus housing API.
//
// The router exposes the following endpoints:
//   - POST /signup: creates a student account. Body: {"email","password","first_name",
//     "last_name","class_year"}. Returns the created student.
//   - POST /login: issues a session token. Body: {"email","password"}. Response:
//     {"token","expires_at","principal":{"user_id","is_admin"}} with the token also
//     surfaced via the `X-Session-Token` header and a `session_token` cookie.
//   - POST /logout: revokes the current session token extracted from the Authorization
//     header or session cookie. Returns 204 No Content and clears the cookie.
//   - GET /profile, PUT /profile/preferences: the caller's own record and living
//     preference edits, exchanging the `studentDTO` payload defined in dto.go.
//   - GET /roommates/candidates: students the caller could invite, filtered by the
//     class_year, study_habits, sleep_schedule, cleanliness, visitors, and repeatable
//     interest query parameters.
//   - GET /roommates/requests, POST /roommates/requests: pending incoming requests
//     (annotated with a preference comparison) and sending a new request.
//   - POST /roommates/requests/{id}/accept, POST /roommates/requests/{id}/decline,
//     DELETE /roommates/requests/{id}: resolving a pending request. Accepting merges
//     both roommate groups and returns every updated member.
//   - DELETE /roommates/connections/{id}: removes an established roommate connection.
//     Rejected while either side holds a room reservation.
//   - GET /dorms, GET /rooms: the dorm catalog and available-room listing. Rooms are
//     filtered by the dorm_id, floor, and type query parameters and by the caller's
//     group size.
//   - POST /reservation, DELETE /reservation: reserves a room for the caller's whole
//     roommate group, or releases the group's current reservation.
//   - POST /admin/dorms, POST /admin/rooms, GET /admin/dorms/{dormID}/rooms,
//     PUT /admin/dorms/{dormID}/rooms/{roomID},
//     POST /admin/dorms/{dormID}/rooms/{roomID}/vacate: administrator catalog
//     management, full room listings, and forced vacating of a room.
//   - POST /admin/timeslots: stamps a selection window on a set of students.
//   - GET /admin/warnings: recent integrity warnings observed by the services.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
