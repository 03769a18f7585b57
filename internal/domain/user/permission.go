package user

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Resource string

const (
	ResourceActivity Resource = "activity"
	ResourceClient   Resource = "client"
	ResourceProject  Resource = "project"
	ResourceMembers  Resource = "members"
	ResourceReport   Resource = "report"
)

type grants map[Resource][]Action

var all = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete}

// rolePermissions is the static grant table consulted by Can
var rolePermissions = map[Role]grants{
	RoleAdmin: {
		ResourceActivity: all,
		ResourceClient:   all,
		ResourceProject:  all,
		ResourceMembers:  all,
		ResourceReport:   all,
	},
	RoleManager: {
		ResourceActivity: all,
		ResourceClient:   all,
		ResourceProject:  all,
		ResourceMembers:  all,
		ResourceReport:   all,
	},
	RoleProjectLeader: {
		ResourceActivity: all,
		ResourceClient:   {ActionRead},
		ResourceProject:  {ActionRead, ActionUpdate},
		ResourceMembers:  {ActionRead},
		ResourceReport:   all,
	},
	RoleEmployee: {
		ResourceActivity: all,
		ResourceClient:   {ActionRead},
		ResourceProject:  {ActionRead},
		ResourceMembers:  {ActionRead},
	},
}

// Can reports whether role may perform action on resource.
func Can(role Role, action Action, resource Resource) bool {
	for _, a := range rolePermissions[role][resource] {
		if a == action {
			return true
		}
	}
	return false
}
