package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"course_market/internal/config"
	"course_market/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers_RequiresAdminRole(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "alice", "pw1", "user")
	createUser(t, db, "root", "secret", "admin")

	// An ordinary user passes the credential gate but fails the role gate
	w := doJSON(t, r, http.MethodGet, "/admin/user", nil, "alice", "pw1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "please login as admin.")

	// The admin gets the listing without credential material
	w = doJSON(t, r, http.MethodGet, "/admin/user", nil, "root", "secret")
	assert.Equal(t, http.StatusOK, w.Code)
	var users []UserAdminResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestCreateCourse_Succeeds(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "root", "secret", "admin")

	body := CourseRequest{Title: "X", Description: "d", Price: 10}
	w := doJSON(t, r, http.MethodPost, "/admin/courses", body, "root", "secret")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/courses/")

	var course domain.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &course))
	assert.Equal(t, "X", course.Title)
	assert.NotZero(t, course.ID)
}

func TestCreateCourse_DuplicateTitleIsSuccessShaped(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "root", "secret", "admin")
	createCourse(t, db, "X", "d", 10)

	// A duplicate title on the create path is a 200 message, never a 400 or 409
	w := doJSON(t, r, http.MethodPost, "/admin/courses", CourseRequest{Title: "X", Description: "other", Price: 5}, "root", "secret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Course Already exists")

	// Nothing new was written
	var count int64
	require.NoError(t, db.Model(&domain.Course{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateCourse_RejectsInvalidFields(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "root", "secret", "admin")

	cases := []struct {
		name string
		body CourseRequest
		want string
	}{
		{"blank title", CourseRequest{Title: "   ", Description: "d", Price: 10}, "Title and Description are required."},
		{"blank description", CourseRequest{Title: "X", Description: "", Price: 10}, "Title and Description are required."},
		{"zero price", CourseRequest{Title: "X", Description: "d", Price: 0}, "Price must be a positive value."},
		{"negative price", CourseRequest{Title: "X", Description: "d", Price: -3}, "Price must be a positive value."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/admin/courses", tc.body, "root", "secret")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tc.want)
		})
	}
}

func TestCreateCourse_RequiresAdminRole(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "alice", "pw1", "user")

	w := doJSON(t, r, http.MethodPost, "/admin/courses", CourseRequest{Title: "X", Description: "d", Price: 10}, "alice", "pw1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "please login as admin.")
}

func TestUpdateCourse_Succeeds(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "root", "secret", "admin")
	course := createCourse(t, db, "X", "d", 10)

	body := CourseRequest{Title: "Y", Description: "updated", Price: 15}
	w := doJSON(t, r, http.MethodPut, "/admin/courses/"+strconv.Itoa(int(course.ID)), body, "root", "secret")
	assert.Equal(t, http.StatusOK, w.Code)

	var updated domain.Course
	require.NoError(t, db.First(&updated, course.ID).Error)
	assert.Equal(t, "Y", updated.Title)
	assert.Equal(t, "updated", updated.Description)
	assert.Equal(t, 15.0, updated.Price)
}

func TestUpdateCourse_UnknownID(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "root", "secret", "admin")

	w := doJSON(t, r, http.MethodPut, "/admin/courses/42", CourseRequest{Title: "Y", Description: "d", Price: 10}, "root", "secret")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Course not found.")
}

func TestUpdateCourse_DuplicateTitleIsBadRequest(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "root", "secret", "admin")
	createCourse(t, db, "X", "d", 10)
	other := createCourse(t, db, "Y", "d", 10)

	// Renaming onto a taken title is a 400, unlike the create-path duplicate
	w := doJSON(t, r, http.MethodPut, "/admin/courses/"+strconv.Itoa(int(other.ID)), CourseRequest{Title: "X", Description: "d", Price: 10}, "root", "secret")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Course with this title already exists.")
}

func TestUpdateCourse_KeepingOwnTitleIsAllowed(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "root", "secret", "admin")
	course := createCourse(t, db, "X", "d", 10)

	// The uniqueness re-check only fires when the title changes
	w := doJSON(t, r, http.MethodPut, "/admin/courses/"+strconv.Itoa(int(course.ID)), CourseRequest{Title: "X", Description: "new text", Price: 12}, "root", "secret")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteCourse_UngatedByDefault(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "alice", "pw1", "user")
	course := createCourse(t, db, "X", "d", 10)

	// An ordinary user may delete once past the credential gate
	w := doJSON(t, r, http.MethodDelete, "/admin/courses/"+strconv.Itoa(int(course.ID)), nil, "alice", "pw1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "has been deleted")

	var count int64
	require.NoError(t, db.Model(&domain.Course{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDeleteCourse_StrictModeRequiresAdmin(t *testing.T) {
	r, db, _ := setupRouter(t, &config.Config{StrictAdminDeletes: true})
	createUser(t, db, "alice", "pw1", "user")
	course := createCourse(t, db, "X", "d", 10)

	w := doJSON(t, r, http.MethodDelete, "/admin/courses/"+strconv.Itoa(int(course.ID)), nil, "alice", "pw1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "please login as admin.")
}

func TestDeleteAllCourses(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "alice", "pw1", "user")

	// Empty catalog first
	w := doJSON(t, r, http.MethodDelete, "/admin/courses", nil, "alice", "pw1")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No courses found to delete.")

	createCourse(t, db, "X", "d", 10)
	createCourse(t, db, "Y", "d", 20)

	w = doJSON(t, r, http.MethodDelete, "/admin/courses", nil, "alice", "pw1")
	assert.Equal(t, http.StatusOK, w.Code)
	var count int64
	require.NoError(t, db.Model(&domain.Course{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDeleteUser_RemovesAccountAndLinks(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "root", "secret", "admin")
	victim := createUser(t, db, "alice", "pw1", "user")
	course := createCourse(t, db, "X", "d", 10)
	require.NoError(t, db.Model(&victim).Association("PurchasedCourses").Append(&course))

	w := doJSON(t, r, http.MethodDelete, "/admin/user/"+strconv.Itoa(int(victim.ID)), nil, "root", "secret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "has been deleted")

	// The account is gone along with its purchase links
	var count int64
	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", victim.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	require.NoError(t, db.Table("purchased_courses").Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDeleteUser_UnknownID(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "root", "secret", "admin")

	w := doJSON(t, r, http.MethodDelete, "/admin/user/42", nil, "root", "secret")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User with ID 42 not found.")
}

func TestDeleteAllUsers(t *testing.T) {
	r, db, _ := setupRouter(t, nil)
	createUser(t, db, "root", "secret", "admin")
	createUser(t, db, "alice", "pw1", "user")

	w := doJSON(t, r, http.MethodDelete, "/admin/user", nil, "root", "secret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "All users have been deleted.")

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
