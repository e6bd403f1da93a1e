package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskboard-api/internal/dto"
	"github.com/yukikurage/taskboard-api/internal/models"
)

type TaskHandlerTestSuite struct {
	suite.Suite
	env   *testEnv
	token string
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.env = newTestEnv(suite.T())
	suite.token = suite.env.register("lead@example.com", "Lea Lead").Token
}

func (suite *TaskHandlerTestSuite) createContact(name, email string) string {
	w := suite.env.do(http.MethodPost, "/api/contacts", map[string]string{"name": name, "email": email}, withToken(suite.token))
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var contact dto.ContactDTO
	decode(suite.T(), w, &contact)
	return contact.ID
}

func (suite *TaskHandlerTestSuite) createTask(body map[string]any) dto.TaskDTO {
	w := suite.env.do(http.MethodPost, "/api/tasks", body, withToken(suite.token))
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskDTO
	decode(suite.T(), w, &task)
	return task
}

func taskBody(title, date string) map[string]any {
	return map[string]any{
		"title":    title,
		"category": "User Story",
		"date":     date,
	}
}

func (suite *TaskHandlerTestSuite) TestCreateTask() {
	contactID := suite.createContact("Dev One", "dev1@example.com")

	body := taskBody("Login page", "2025-05-01")
	body["prio"] = "urgent"
	body["subtasks"] = []map[string]string{{"text": "form"}, {"text": "styles", "status": "checked"}}
	body["assigned_to"] = []map[string]string{{"id": contactID}}

	task := suite.createTask(body)

	suite.Equal("Login page", task.Title)
	suite.Equal("2025-05-01", task.Date)
	suite.Equal("Urgent", task.PriorityDisplay)
	suite.Equal(models.TaskStatusToDo, task.Status)
	suite.Equal("To Do", task.StatusDisplay)
	suite.Require().Len(task.Subtasks, 2)
	suite.Equal("unchecked", *task.Subtasks[0].Status)
	suite.Require().Len(task.AssignedTo, 1)
	suite.Equal("Dev One", task.AssignedTo[0].Name)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Validation() {
	body := taskBody("Bad", "tomorrow")
	body["prio"] = "asap"
	body["assigned_to"] = []map[string]string{{"id": "missing"}}

	w := suite.env.do(http.MethodPost, "/api/tasks", body, withToken(suite.token))
	suite.Require().Equal(http.StatusBadRequest, w.Code)

	fields := fieldErrors(suite.T(), w)
	suite.Contains(fields, "date")
	suite.Contains(fields, "prio")
	suite.Contains(fields, "assigned_to[0].id")

	var tasks int64
	suite.Require().NoError(suite.env.db.Model(&models.Task{}).Count(&tasks).Error)
	suite.Zero(tasks)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask() {
	body := taskBody("Release", "2025-05-01")
	body["subtasks"] = []map[string]string{{"text": "one"}, {"text": "two"}}
	task := suite.createTask(body)

	patch := map[string]any{
		"status":   "inProgress",
		"subtasks": []map[string]string{{"id": *task.Subtasks[0].ID, "text": "one, edited", "status": "checked"}},
	}
	w := suite.env.do(http.MethodPatch, "/api/tasks/"+task.ID, patch, withToken(suite.token))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var patched dto.TaskDTO
	decode(suite.T(), w, &patched)
	suite.Equal(models.TaskStatusInProgress, patched.Status)
	suite.Require().Len(patched.Subtasks, 1)
	suite.Equal(*task.Subtasks[0].ID, *patched.Subtasks[0].ID)
	suite.Equal("checked", *patched.Subtasks[0].Status)

	w = suite.env.do(http.MethodPut, "/api/tasks/"+task.ID, taskBody("Release v2", "2025-06-01"), withToken(suite.token))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var replaced dto.TaskDTO
	decode(suite.T(), w, &replaced)
	suite.Equal("Release v2", replaced.Title)
	suite.Equal(models.TaskStatusInProgress, replaced.Status)
	suite.Empty(replaced.Subtasks)

	w = suite.env.do(http.MethodPut, "/api/tasks/"+task.ID, map[string]any{"title": "no date"}, withToken(suite.token))
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks() {
	suite.createTask(taskBody("Old", "2025-01-01"))
	newer := taskBody("New", "2025-03-01")
	newer["status"] = "done"
	suite.createTask(newer)

	w := suite.env.do(http.MethodGet, "/api/tasks", nil, withToken(suite.token))
	suite.Require().Equal(http.StatusOK, w.Code)

	var list dto.TaskListResponse
	decode(suite.T(), w, &list)
	suite.Require().Len(list.Tasks, 2)
	suite.Equal("New", list.Tasks[0].Title)
	suite.EqualValues(2, list.Pagination.Total)

	w = suite.env.do(http.MethodGet, "/api/tasks?status=done", nil, withToken(suite.token))
	decode(suite.T(), w, &list)
	suite.Require().Len(list.Tasks, 1)
	suite.Equal("New", list.Tasks[0].Title)

	w = suite.env.do(http.MethodGet, "/api/tasks?status=blocked", nil, withToken(suite.token))
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	task := suite.createTask(taskBody("Gone", "2025-01-01"))

	w := suite.env.do(http.MethodDelete, "/api/tasks/"+task.ID, nil, withToken(suite.token))
	suite.Require().Equal(http.StatusNoContent, w.Code)

	w = suite.env.do(http.MethodGet, "/api/tasks/"+task.ID, nil, withToken(suite.token))
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestSummary() {
	w := suite.env.do(http.MethodGet, "/api/tasks/summary", nil, withToken(suite.token))
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"todos":0,"in_progress":0,"await_feedback":0,"done":0,"total":0,"urgent":0,"next_urgent_due":null}`, w.Body.String())

	urgent := taskBody("Urgent", "2025-04-02")
	urgent["prio"] = "urgent"
	suite.createTask(urgent)
	suite.createTask(taskBody("Early", "2025-02-01"))

	w = suite.env.do(http.MethodGet, "/api/tasks/summary", nil, withToken(suite.token))
	var summary dto.SummaryDTO
	decode(suite.T(), w, &summary)
	suite.EqualValues(2, summary.ToDo)
	suite.EqualValues(2, summary.Total)
	suite.EqualValues(1, summary.Urgent)
	suite.Equal("2025-02-01", *summary.NextUrgentDue)
}

func (suite *TaskHandlerTestSuite) TestGenerateTasks_NotConfigured() {
	w := suite.env.do(http.MethodPost, "/api/tasks/generate", map[string]string{"text": "plan the launch"}, withToken(suite.token))
	suite.Equal(http.StatusServiceUnavailable, w.Code)

	w = suite.env.do(http.MethodPost, "/api/tasks/generate", map[string]string{}, withToken(suite.token))
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUnknownTask() {
	w := suite.env.do(http.MethodPatch, "/api/tasks/nope", map[string]string{"title": "x"}, withToken(suite.token))
	suite.Equal(http.StatusNotFound, w.Code)
}
