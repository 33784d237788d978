package candidate

// quick actions that make sense while writing a new issue, so things like
// /reopen or /unassign are left out.
// https://docs.gitlab.com/ee/user/project/quick_actions.html
var quickActions = []Candidate{
	{Completion: "/assign ", Description: "Assign users"},
	{Completion: "/blocked_by ", Description: "Is blocked by other issues"},
	{Completion: "/blocks ", Description: "Blocks other issues"},
	{Completion: "/due ", Description: "Due on a certain date"},
	{Completion: "/relate ", Description: "Relates to other issues"},
	{Completion: "/label ", Description: "Add labels"},
	{Completion: "/milestone ", Description: "Add to milestone"},
	{Completion: "/title ", Description: "Set title"},
}

// QuickActions returns a fresh set of the built in quick actions.
func QuickActions() Set {
	return NewSet(quickActions...)
}
