package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/intelliconsult/internal/mlclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTraining(t *testing.T, s *Server, name, start, end string, skills ...string) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/trainings", map[string]any{
		"name":               name,
		"startDate":          start,
		"endDate":            end,
		"trainerName":        "Ada",
		"skillsToBeAcquired": skills,
		"noOfSeats":          20,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &body)
	return body.ID
}

func createOpportunity(t *testing.T, s *Server, managerID, name string) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/opportunities", map[string]any{
		"name":              name,
		"keySkills":         []string{"Go"},
		"yearsOfExperience": 3,
		"postingDate":       "2025-02-01T00:00:00Z",
		"lastDateToApply":   "2025-04-01T00:00:00Z",
		"hiringManagerId":   managerID,
		"numberOfOpenings":  2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &body)
	return body.ID
}

// ---------------------------------------------------------------------
// Person endpoints
// ---------------------------------------------------------------------

func TestCreateUser(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/users", map[string]any{
		"name":     "Grace Hopper",
		"email":    "  Grace@Example.com ",
		"password": "correct-horse",
		"role":     "consultant",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]any
	decodeBody(t, w, &body)
	assert.Equal(t, "grace@example.com", body["email"])
	assert.Equal(t, "consultant", body["role"])
	assert.NotContains(t, body, "passwordHash")
	assert.NotContains(t, body, "password")
	_, err := uuid.Parse(body["id"].(string))
	assert.NoError(t, err)

	stored, err := s.repo.GetPerson(t.Context(), body["id"].(string))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
	assert.True(t, s.users.passwordConfig.VerifyPassword("correct-horse", stored.PasswordHash))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s, _ := newTestServer(t)
	register(t, s, "Grace", "grace@example.com", "consultant")

	w := doJSON(t, s, http.MethodPost, "/users", map[string]any{
		"name":     "Other Grace",
		"email":    "GRACE@example.com",
		"password": "another-password",
		"role":     "manager",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeConflict, errorCode(t, w))
}

func TestCreateUser_Validation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{name: "missing email", body: map[string]any{"name": "A", "password": "long-enough", "role": "consultant"}},
		{name: "bad email", body: map[string]any{"name": "A", "email": "nope", "password": "long-enough", "role": "consultant"}},
		{name: "blank email", body: map[string]any{"name": "A", "email": "   ", "password": "long-enough", "role": "consultant"}},
		{name: "short password", body: map[string]any{"name": "A", "email": "a@b.co", "password": "short", "role": "consultant"}},
		{name: "unknown role", body: map[string]any{"name": "A", "email": "a@b.co", "password": "long-enough", "role": "admin"}},
		{name: "not json", body: "just a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/users", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, CodeValidation, errorCode(t, w))
		})
	}
}

func TestGetUser(t *testing.T) {
	s, _ := newTestServer(t)
	id := register(t, s, "Grace", "grace@example.com", "consultant")

	w := doJSON(t, s, http.MethodGet, "/users/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	decodeBody(t, w, &body)
	assert.Equal(t, "Grace", body["name"])

	w = doJSON(t, s, http.MethodGet, "/users/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, errorCode(t, w))

	w = doJSON(t, s, http.MethodGet, "/users/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateUser(t *testing.T) {
	s, _ := newTestServer(t)
	id := register(t, s, "Grace", "grace@example.com", "consultant")
	register(t, s, "Alan", "alan@example.com", "consultant")

	w := doJSON(t, s, http.MethodPut, "/users/"+id, map[string]any{
		"name":         "Grace B. Hopper",
		"email":        " Grace.Hopper@Example.com  ",
		"mobileNumber": "555-0100",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]any
	decodeBody(t, w, &body)
	assert.Equal(t, "Grace B. Hopper", body["name"])
	assert.Equal(t, "grace.hopper@example.com", body["email"])
	assert.Equal(t, "555-0100", body["mobileNumber"])

	w = doJSON(t, s, http.MethodPut, "/users/"+id, map[string]any{
		"name":         "Grace",
		"email":        "alan@example.com",
		"mobileNumber": "555-0100",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, s, http.MethodPut, "/users/"+uuid.NewString(), map[string]any{
		"name":         "Nobody",
		"email":        "nobody@example.com",
		"mobileNumber": "555-0199",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConsultantDirectory(t *testing.T) {
	s, _ := newTestServer(t)
	register(t, s, "Grace", "grace@example.com", "consultant")
	register(t, s, "Alan", "alan@example.com", "consultant")
	register(t, s, "Barbara", "barbara@example.com", "manager")

	w := doJSON(t, s, http.MethodGet, "/consultants", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Consultants []map[string]any `json:"consultants"`
		Count       int              `json:"count"`
	}
	decodeBody(t, w, &list)
	assert.Equal(t, 2, list.Count)
	assert.Len(t, list.Consultants, 2)
	for _, c := range list.Consultants {
		assert.NotContains(t, c, "passwordHash")
	}

	w = doJSON(t, s, http.MethodGet, "/consultants/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count": 2}`, w.Body.String())
}

// ---------------------------------------------------------------------
// Training endpoints
// ---------------------------------------------------------------------

func TestTrainings_CreateAndUpcoming(t *testing.T) {
	s, _ := newTestServer(t)
	past := createTraining(t, s, "Old", "2025-01-01T00:00:00Z", "2025-01-31T00:00:00Z")
	current := createTraining(t, s, "Current", "2025-02-15T00:00:00Z", "2025-03-15T00:00:00Z", "Go")

	w := doJSON(t, s, http.MethodGet, "/trainings/"+past, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var training map[string]any
	decodeBody(t, w, &training)
	assert.Equal(t, []any{}, training["skillsToBeAcquired"])

	w = doJSON(t, s, http.MethodGet, "/trainings/upcoming", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var upcoming struct {
		Trainings []struct {
			ID string `json:"id"`
		} `json:"trainings"`
		Count int `json:"count"`
	}
	decodeBody(t, w, &upcoming)
	require.Equal(t, 1, upcoming.Count)
	assert.Equal(t, current, upcoming.Trainings[0].ID)

	w = doJSON(t, s, http.MethodGet, "/trainings/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrainings_EndBeforeStartRejected(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/trainings", map[string]any{
		"name":        "Backwards",
		"startDate":   "2025-02-01T00:00:00Z",
		"endDate":     "2025-01-01T00:00:00Z",
		"trainerName": "Ada",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrainings_AssignCompleteAndPending(t *testing.T) {
	s, _ := newTestServer(t)
	user := register(t, s, "Grace", "grace@example.com", "consultant")
	goCourse := createTraining(t, s, "Go", "2025-01-01T00:00:00Z", "2025-06-01T00:00:00Z", "Go")
	k8s := createTraining(t, s, "Kubernetes", "2025-01-01T00:00:00Z", "2025-06-01T00:00:00Z", "Kubernetes")

	w := doJSON(t, s, http.MethodGet, "/users/"+user+"/assignments", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, id := range []string{goCourse, k8s} {
		w = doJSON(t, s, http.MethodPost, "/users/"+user+"/assignments", map[string]any{
			"trainingId":   id,
			"assignedDate": "2025-01-02T00:00:00Z",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodPost, "/users/"+user+"/assignments", map[string]any{
		"trainingId":   goCourse,
		"assignedDate": "2025-01-03T00:00:00Z",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, s, http.MethodPost, "/users/"+user+"/assignments", map[string]any{
		"trainingId":   uuid.NewString(),
		"assignedDate": "2025-01-03T00:00:00Z",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodPost, "/users/"+user+"/completions", map[string]any{
		"trainingId":    goCourse,
		"completedDate": "2025-02-01T00:00:00Z",
		"score":         0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/assignments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var assigned struct {
		Trainings []map[string]any `json:"trainings"`
		Pending   []struct {
			TrainingID string `json:"trainingId"`
		} `json:"pending"`
	}
	decodeBody(t, w, &assigned)
	assert.Len(t, assigned.Trainings, 2)
	require.Len(t, assigned.Pending, 1)
	assert.Equal(t, k8s, assigned.Pending[0].TrainingID)

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/completions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var done struct {
		TrainingsCompleted []struct {
			Score int `json:"score"`
		} `json:"trainingsCompleted"`
	}
	decodeBody(t, w, &done)
	require.Len(t, done.TrainingsCompleted, 1)
	assert.Equal(t, 0, done.TrainingsCompleted[0].Score)

	w = doJSON(t, s, http.MethodGet, "/assignments/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count": 1}`, w.Body.String())
}

func TestTrainings_CompletionRequiresScore(t *testing.T) {
	s, _ := newTestServer(t)
	user := register(t, s, "Grace", "grace@example.com", "consultant")
	course := createTraining(t, s, "Go", "2025-01-01T00:00:00Z", "2025-06-01T00:00:00Z")

	w := doJSON(t, s, http.MethodPost, "/users/"+user+"/completions", map[string]any{
		"trainingId":    course,
		"completedDate": "2025-02-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/completions", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ---------------------------------------------------------------------
// Attendance and hours endpoints
// ---------------------------------------------------------------------

func TestAttendanceAndHours(t *testing.T) {
	s, _ := newTestServer(t)
	user := register(t, s, "Grace", "grace@example.com", "consultant")
	course := createTraining(t, s, "Go", "2025-01-01T00:00:00Z", "2025-06-01T00:00:00Z", "Go")
	unassigned := createTraining(t, s, "Rust", "2025-01-01T00:00:00Z", "2025-06-01T00:00:00Z", "Rust")

	w := doJSON(t, s, http.MethodGet, "/users/"+user+"/hours/monthly", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodPost, "/users/"+user+"/assignments", map[string]any{
		"trainingId":   course,
		"assignedDate": "2025-01-02T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/hours/monthly", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "assignments without attendance")

	w = doJSON(t, s, http.MethodPost, "/users/"+user+"/attendance", map[string]any{
		"entries": []map[string]any{
			{
				"trainingId":       course,
				"weekNo":           2,
				"year":             2025,
				"totalDaysInWeek":  5,
				"daysPresent":      []any{"Monday", map[string]string{"kind": "weekday", "value": "Tuesday"}},
				"trainingAttended": true,
			},
			{
				"trainingId":      course,
				"weekNo":          6,
				"year":            2025,
				"totalDaysInWeek": 5,
				"daysPresent":     []any{"2025-02-03"},
			},
			{
				"trainingId":      unassigned,
				"weekNo":          2,
				"year":            2025,
				"totalDaysInWeek": 5,
				"daysPresent":     []any{"Monday"},
			},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/attendance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sheet struct {
		AttendanceSheet []struct {
			DaysPresent []map[string]string `json:"daysPresent"`
		} `json:"attendanceSheet"`
	}
	decodeBody(t, w, &sheet)
	require.Len(t, sheet.AttendanceSheet, 3)
	assert.Equal(t, map[string]string{"kind": "weekday", "value": "Monday"}, sheet.AttendanceSheet[0].DaysPresent[0])
	assert.Equal(t, "date", sheet.AttendanceSheet[1].DaysPresent[0]["kind"])

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/hours/monthly", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var monthly struct {
		UserID       string      `json:"userId"`
		MonthlyHours [12]float64 `json:"monthlyHours"`
	}
	decodeBody(t, w, &monthly)
	assert.Equal(t, user, monthly.UserID)
	assert.Equal(t, 18.0, monthly.MonthlyHours[0])
	assert.Equal(t, 9.0, monthly.MonthlyHours[1])
	assert.Equal(t, 0.0, monthly.MonthlyHours[2])

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/hours/total", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var total struct {
		TotalHours float64 `json:"totalHours"`
		Trainings  []struct {
			TrainingName  string  `json:"trainingName"`
			HoursAttended float64 `json:"hoursAttended"`
		} `json:"trainings"`
	}
	decodeBody(t, w, &total)
	assert.Equal(t, 9.0, total.TotalHours)
	require.Len(t, total.Trainings, 1)
	assert.Equal(t, "Go", total.Trainings[0].TrainingName)

	w = doJSON(t, s, http.MethodGet, "/hours/monthly", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all struct {
		MonthlyHours map[string][12]float64 `json:"monthlyHours"`
	}
	decodeBody(t, w, &all)
	assert.Len(t, all.MonthlyHours, 1)
	assert.Equal(t, 18.0, all.MonthlyHours[user][0])
}

func TestAttendance_Validation(t *testing.T) {
	s, _ := newTestServer(t)
	user := register(t, s, "Grace", "grace@example.com", "consultant")

	w := doJSON(t, s, http.MethodPost, "/users/"+user+"/attendance", map[string]any{"entries": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, "/users/"+user+"/attendance", map[string]any{
		"entries": []map[string]any{{"trainingId": uuid.NewString(), "weekNo": 60, "year": 2025}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/attendance", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadAttendance(t *testing.T) {
	s, ml := newTestServer(t)

	w := doUpload(t, s, "/attendance/upload", "week.xlsx", []byte("sheet-bytes"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"rows": 3}`, w.Body.String())
	assert.Contains(t, string(ml.lastBody("/"+mlclient.EndpointAttendanceFile)), "sheet-bytes")

	w = doJSON(t, s, http.MethodPost, "/attendance/upload", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---------------------------------------------------------------------
// Skill endpoints
// ---------------------------------------------------------------------

func TestMergeSkills(t *testing.T) {
	s, _ := newTestServer(t)
	user := register(t, s, "Grace", "grace@example.com", "consultant")

	w := doJSON(t, s, http.MethodGet, "/users/"+user+"/skills", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodPost, "/users/"+user+"/skills", map[string]any{
		"skills": []map[string]any{{"name": "Go", "yearsOfExperience": 2, "certification": "yes"}},
		"projects": []map[string]any{
			{"projectInfo": "CLI", "timeConsumedInDays": 10, "skillsUsed": []string{"Go"}, "githubUrl": "https://github.com/x/cli"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, s, http.MethodPost, "/users/"+user+"/skills", map[string]any{
		"skills": []map[string]any{{"name": "go", "endorsements": 4}, {"name": "SQL"}},
		"projects": []map[string]any{
			{"projectInfo": "CLI v2", "timeConsumedInDays": 12, "githubUrl": "https://github.com/x/cli"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/skills", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var set struct {
		Skills []struct {
			Name              string  `json:"name"`
			YearsOfExperience float64 `json:"yearsOfExperience"`
			Certification     bool    `json:"certification"`
			Endorsements      int     `json:"endorsements"`
		} `json:"skills"`
		Projects []struct {
			ProjectInfo string `json:"projectInfo"`
		} `json:"projects"`
	}
	decodeBody(t, w, &set)
	require.Len(t, set.Skills, 2)
	assert.Equal(t, "Go", set.Skills[0].Name)
	assert.Equal(t, 2.0, set.Skills[0].YearsOfExperience)
	assert.True(t, set.Skills[0].Certification)
	assert.Equal(t, 2, set.Skills[0].Endorsements, "a repeat submission adds one endorsement")
	assert.Equal(t, "SQL", set.Skills[1].Name)
	require.Len(t, set.Projects, 1)
	assert.Equal(t, "CLI", set.Projects[0].ProjectInfo, "projects are keyed by githubUrl")
}

func TestMergeSkills_UnknownUser(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/users/"+uuid.NewString()+"/skills", map[string]any{
		"skills": []map[string]any{{"name": "Go"}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadResume(t *testing.T) {
	s, ml := newTestServer(t)
	user := register(t, s, "Grace", "grace@example.com", "consultant")

	w := doUpload(t, s, "/users/"+user+"/resume", "grace.pdf", []byte("%PDF-1.4"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first struct {
		Message string `json:"message"`
		Resume  struct {
			Status     string `json:"status"`
			ResumePath string `json:"resumePath"`
		} `json:"resume"`
		Skills []struct {
			Name string `json:"name"`
		} `json:"skills"`
	}
	decodeBody(t, w, &first)
	assert.Equal(t, "Resume uploaded and skills updated successfully", first.Message)
	assert.Equal(t, "new", first.Resume.Status)
	assert.Equal(t, "grace.pdf", first.Resume.ResumePath)
	assert.Len(t, first.Skills, 2)

	ml.reply("/"+mlclient.EndpointResume, http.StatusOK, `{"skills": ["docker", "Terraform"]}`)
	w = doUpload(t, s, "/users/"+user+"/resume", "grace-v2.pdf", []byte("%PDF-1.5"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var second struct {
		Resume struct {
			Status string `json:"status"`
		} `json:"resume"`
		Skills []struct {
			Name string `json:"name"`
		} `json:"skills"`
	}
	decodeBody(t, w, &second)
	assert.Equal(t, "updated", second.Resume.Status)
	assert.Len(t, second.Skills, 3, "docker merges into Docker")
	assert.Equal(t, 2, ml.callCount("/"+mlclient.EndpointResume))
}

func TestUploadResume_Failures(t *testing.T) {
	s, ml := newTestServer(t)
	user := register(t, s, "Grace", "grace@example.com", "consultant")

	w := doUpload(t, s, "/users/"+uuid.NewString()+"/resume", "x.pdf", []byte("x"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, ml.callCount("/"+mlclient.EndpointResume))

	ml.reply("/"+mlclient.EndpointResume, http.StatusInternalServerError, `{"error": "boom"}`)
	w = doUpload(t, s, "/users/"+user+"/resume", "x.pdf", []byte("x"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, CodeUpstream, errorCode(t, w))

	ml.reply("/"+mlclient.EndpointResume, http.StatusOK, `{"skills": "not-a-list"}`)
	w = doUpload(t, s, "/users/"+user+"/resume", "x.pdf", []byte("x"))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	rec, err := s.repo.GetResume(t.Context(), user)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestTrainingScore(t *testing.T) {
	s, ml := newTestServer(t)
	user := register(t, s, "Grace", "grace@example.com", "consultant")

	w := doJSON(t, s, http.MethodGet, "/users/"+user+"/training-score", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, ml.callCount("/"+mlclient.EndpointTraining))

	w = doJSON(t, s, http.MethodPost, "/users/"+user+"/skills", map[string]any{
		"skills": []map[string]any{{"name": "Go", "yearsOfExperience": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/training-score", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"recommendations": []}`, w.Body.String())

	var sent mlclient.TrainingScoreRequest
	require.NoError(t, json.Unmarshal(ml.lastBody("/"+mlclient.EndpointTraining), &sent))
	require.Len(t, sent.Consultants, 1)
	assert.Equal(t, user, sent.Consultants[0].UserID)
	assert.Equal(t, []string{"Go"}, sent.RequiredSkillsMap[user])
	assert.Equal(t, []string{}, sent.CompletedTrainingsMap[user])
}

// ---------------------------------------------------------------------
// Opportunity endpoints
// ---------------------------------------------------------------------

func TestCreateOpportunity_RequiresManager(t *testing.T) {
	s, _ := newTestServer(t)
	consultant := register(t, s, "Grace", "grace@example.com", "consultant")

	for _, managerID := range []string{consultant, uuid.NewString()} {
		w := doJSON(t, s, http.MethodPost, "/opportunities", map[string]any{
			"name":             "Platform",
			"keySkills":        []string{"Go"},
			"postingDate":      "2025-02-01T00:00:00Z",
			"lastDateToApply":  "2025-04-01T00:00:00Z",
			"hiringManagerId":  managerID,
			"numberOfOpenings": 1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	}
}

func TestOpportunityLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	manager := register(t, s, "Barbara", "barbara@example.com", "manager")
	user := register(t, s, "Grace", "grace@example.com", "consultant")
	opp := createOpportunity(t, s, manager, "Platform")
	other := createOpportunity(t, s, manager, "Data")

	w := doJSON(t, s, http.MethodGet, "/opportunities/"+opp, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/managers/"+manager+"/opportunities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var owned struct {
		Count int `json:"count"`
	}
	decodeBody(t, w, &owned)
	assert.Equal(t, 2, owned.Count)

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/invites", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, id := range []string{opp, opp, other} {
		w = doJSON(t, s, http.MethodPost, "/users/"+user+"/invites", map[string]any{"opportunityId": id})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	var invited struct {
		Message string `json:"message"`
		Data    struct {
			Opportunities []string `json:"opportunities"`
		} `json:"data"`
	}
	decodeBody(t, w, &invited)
	assert.Equal(t, "Opportunity invitation sent successfully", invited.Message)
	assert.Equal(t, []string{opp, other}, invited.Data.Opportunities)

	w = doJSON(t, s, http.MethodPost, "/users/"+user+"/invites", map[string]any{"opportunityId": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/invites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending struct {
		Opportunities []struct {
			ID string `json:"id"`
		} `json:"opportunities"`
	}
	decodeBody(t, w, &pending)
	assert.Len(t, pending.Opportunities, 2)

	for range 2 {
		w = doJSON(t, s, http.MethodPost, "/users/"+user+"/accepts", map[string]any{"opportunityId": opp})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"message": "Opportunity accepted successfully"}`, w.Body.String())
	}

	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/accepts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var accepted struct {
		Opportunities []struct {
			OpportunityID     string `json:"opportunityId"`
			Name              string `json:"name"`
			HiringManagerName string `json:"hiringManagerName"`
		} `json:"opportunities"`
	}
	decodeBody(t, w, &accepted)
	require.Len(t, accepted.Opportunities, 1)
	assert.Equal(t, opp, accepted.Opportunities[0].OpportunityID)
	assert.Equal(t, "Platform", accepted.Opportunities[0].Name)
	assert.Equal(t, "Barbara", accepted.Opportunities[0].HiringManagerName)

	w = doJSON(t, s, http.MethodPost, "/users/"+user+"/accepts", map[string]any{"opportunityId": other})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, s, http.MethodGet, "/users/"+user+"/invites", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "accepting every invite empties the list")
}

func TestMatchOpportunity(t *testing.T) {
	s, ml := newTestServer(t)
	user := register(t, s, "Grace", "grace@example.com", "consultant")
	w := doJSON(t, s, http.MethodPost, "/users/"+user+"/skills", map[string]any{
		"skills": []map[string]any{{"name": "Go", "yearsOfExperience": 5, "endorsements": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	ml.reply("/"+mlclient.EndpointOpportunity, http.StatusOK, `{
		"clustered_opportunities": {"0": ["Platform"]},
		"consultant_matches": [
			{"userId": "`+user+`", "matched_opportunities": [{"text": "Opportunity: Platform. Required Skills: Go", "date": "2025-02-01", "score": 0.9}]}
		]
	}`)

	w = doJSON(t, s, http.MethodPost, "/opportunities/match", map[string]any{
		"name":        "Platform",
		"keySkills":   []string{"Go"},
		"postingDate": "2025-02-01T15:04:05Z",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Status            string `json:"status"`
		ConsultantMatches []struct {
			UserID string `json:"userId"`
			Name   string `json:"name"`
			Email  string `json:"email"`
		} `json:"consultant_matches"`
	}
	decodeBody(t, w, &res)
	assert.Equal(t, "success", res.Status)
	require.Len(t, res.ConsultantMatches, 1)
	assert.Equal(t, "Grace", res.ConsultantMatches[0].Name)
	assert.Equal(t, "grace@example.com", res.ConsultantMatches[0].Email)

	var sent mlclient.MatchRequest
	require.NoError(t, json.Unmarshal(ml.lastBody("/"+mlclient.EndpointOpportunity), &sent))
	require.Len(t, sent.Opportunities, 1)
	assert.Equal(t, "2025-02-01", sent.Opportunities[0].Date)
	assert.Equal(t, "Opportunity: Platform. Required Skills: Go", sent.Opportunities[0].Text)
	require.Len(t, sent.Consultants, 1)
	assert.Equal(t, user, sent.Consultants[0].UserID)
}

func TestMatchOpportunity_Invalid(t *testing.T) {
	s, ml := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "no name", body: map[string]any{"keySkills": []string{"Go"}, "postingDate": "2025-02-01"}},
		{name: "no skills", body: map[string]any{"name": "X", "keySkills": []string{}, "postingDate": "2025-02-01"}},
		{name: "blank skill", body: map[string]any{"name": "X", "keySkills": []string{""}, "postingDate": "2025-02-01"}},
		{name: "bad date", body: map[string]any{"name": "X", "keySkills": []string{"Go"}, "postingDate": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/opportunities/match", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Zero(t, ml.callCount("/"+mlclient.EndpointOpportunity))
}

func TestInsights(t *testing.T) {
	s, ml := newTestServer(t)
	register(t, s, "Grace", "grace@example.com", "consultant")
	register(t, s, "Barbara", "barbara@example.com", "manager")

	w := doJSON(t, s, http.MethodGet, "/insights", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status": "success", "analysis": {"insights": ["bench is growing"]}}`, w.Body.String())
	assert.Equal(t, 1, ml.callCount("/"+mlclient.EndpointAnalyze))

	ml.reply("/"+mlclient.EndpointAnalyze, http.StatusServiceUnavailable, `down`)
	w = doJSON(t, s, http.MethodGet, "/insights", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
