package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"social-chat/domain/chat"
)

const usage = `/to <user> <message>        private message
/group <group> <message>    group message
/create <name> <u1,u2,...>  create a group
/add <group> <u1,u2,...>    add users to a group
/quit`

type frame struct {
	Event chat.Event      `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// parseLine turns a prompt line into an outbound frame.
func parseLine(line string) (frame, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return frame{}, fmt.Errorf("expected a command and two arguments")
	}
	name, target, rest := fields[0], fields[1], strings.Join(fields[2:], " ")

	var action chat.Action
	switch name {
	case "/to":
		action = chat.IndividualMessageCommand{ReceiverID: chat.UserID(target), Message: rest}
	case "/group":
		action = chat.GroupMessageCommand{GroupID: chat.GroupID(target), Message: rest}
	case "/create":
		action = chat.CreateGroupCommand{GroupName: target, UserIDs: userIDs(rest)}
	case "/add":
		action = chat.AddUsersToGroupCommand{GroupID: chat.GroupID(target), UserIDs: userIDs(rest)}
	default:
		return frame{}, fmt.Errorf("unknown command %q", name)
	}

	data, err := json.Marshal(action)
	if err != nil {
		return frame{}, err
	}
	return frame{Event: action.Event(), Data: data}, nil
}

func userIDs(csv string) []chat.UserID {
	var ids []chat.UserID
	for _, id := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, chat.UserID(trimmed))
		}
	}
	return ids
}

// render gives a one-line view of an inbound frame.
func render(f frame) string {
	switch f.Event {
	case chat.EventIndividual, chat.EventGroup:
		var view chat.MessageView
		if err := json.Unmarshal(f.Data, &view); err != nil || view.Sender == nil {
			break
		}
		where := ""
		if view.Group != nil {
			where = fmt.Sprintf("[%s] ", view.Group.Name)
		}
		return fmt.Sprintf("%s%s: %s", where, view.Sender.ID, view.Message)
	case chat.EventGroupCreated:
		var view chat.GroupView
		if err := json.Unmarshal(f.Data, &view); err == nil {
			return fmt.Sprintf("group %q created (%s) with %d users", view.Name, view.ID, len(view.Users))
		}
	case chat.EventUsersAddedToGroup:
		var view chat.MembersAddedView
		if err := json.Unmarshal(f.Data, &view); err == nil {
			return fmt.Sprintf("group %s now has %d users", view.GroupID, len(view.UserIDs))
		}
	case chat.EventError:
		var reply chat.ActionError
		if err := json.Unmarshal(f.Data, &reply); err == nil {
			return fmt.Sprintf("%s rejected (%s): %s", reply.Action, reply.Kind, reply.Reason)
		}
	}
	return fmt.Sprintf("%s %s", f.Event, string(f.Data))
}
