package model

// Analytics is the month-over-month dashboard snapshot for a workspace or project
type Analytics struct {
	CurrentTasksCount            int `json:"currentTasksCount"`
	PreviousTasksCount           int `json:"previousTasksCount"`
	TasksDifference              int `json:"tasksDifference"`
	CurrentAssigneeTasksCount    int `json:"currentAssigneeTasksCount"`
	PreviousAssigneeTasksCount   int `json:"previousAssigneeTasksCount"`
	AssigneeTasksDifference      int `json:"assigneeTasksDifference"`
	CurrentCompletedTasksCount   int `json:"currentCompletedTasksCount"`
	PreviousCompletedTasksCount  int `json:"previousCompletedTasksCount"`
	CompletedTasksDifference     int `json:"completedTasksDifference"`
	CurrentIncompleteTasksCount  int `json:"currentIncompleteTasksCount"`
	PreviousIncompleteTasksCount int `json:"previousIncompleteTasksCount"`
	IncompleteTasksDifference    int `json:"incompleteTasksDifference"`
	CurrentOverdueTasksCount     int `json:"currentOverdueTasksCount"`
	PreviousOverdueTasksCount    int `json:"previousOverdueTasksCount"`
	OverdueTasksDifference       int `json:"overdueTasksDifference"`
}
