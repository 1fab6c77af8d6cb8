package chat

// Action is an inbound real-time request received on a connection.
type Action interface {
	Event() Event
}

type IndividualMessageCommand struct {
	SenderID   UserID `json:"senderId"`
	ReceiverID UserID `json:"receiverId" validate:"required,notblank"`
	Message    string `json:"message" validate:"required,notblank,max=4096"`
}

func (IndividualMessageCommand) Event() Event { return EventIndividual }

type GroupMessageCommand struct {
	SenderID UserID  `json:"senderId"`
	GroupID  GroupID `json:"groupId" validate:"required,notblank"`
	Message  string  `json:"message" validate:"required,notblank,max=4096"`
}

func (GroupMessageCommand) Event() Event { return EventGroup }

type CreateGroupCommand struct {
	GroupName string   `json:"groupName" validate:"required,notblank,max=128"`
	UserIDs   []UserID `json:"userIds" validate:"required,min=1,dive,required,notblank"`
}

func (CreateGroupCommand) Event() Event { return EventCreateGroup }

type AddUsersToGroupCommand struct {
	GroupID GroupID  `json:"groupId" validate:"required,notblank"`
	UserIDs []UserID `json:"userIds" validate:"required,min=1,dive,required,notblank"`
}

func (AddUsersToGroupCommand) Event() Event { return EventAddUsersToGroup }
