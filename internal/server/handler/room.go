package handler

import (
	"strings"

	"github.com/beatline/beatline/internal/protocol"
	"github.com/beatline/beatline/internal/types"
)

// handleCreateRoom 创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeMaintenance))
		return
	}

	payload, err := protocol.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 已在房间中则先退出
	if client.GetRoom() != "" {
		h.roomManager.LeaveRoom(client)
	}

	room, err := h.roomManager.CreateRoom(client, payload.HostName, payload.ClientID)
	if err != nil {
		sendError(client, err)
		return
	}

	h.sessionManager.SetIdentity(client.GetID(), payload.HostName, payload.ClientID)
	h.sessionManager.SetRoom(client.GetID(), room.Code)

	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomCode: room.Code,
		HostID:   room.HostID,
		Player:   room.GetPlayerInfo(client.GetID()),
	}))
	room.SendStateTo(client)
}

// handleJoinRoom 加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeMaintenance))
		return
	}

	payload, err := protocol.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	code := strings.ToUpper(strings.TrimSpace(payload.RoomCode))

	if client.GetRoom() != "" && client.GetRoom() != code {
		h.roomManager.LeaveRoom(client)
	}

	room, _, err := h.roomManager.JoinRoom(client, code, payload.PlayerName, payload.ClientID)
	if err != nil {
		sendError(client, err)
		return
	}

	h.sessionManager.SetIdentity(client.GetID(), payload.PlayerName, payload.ClientID)
	h.sessionManager.SetRoom(client.GetID(), room.Code)

	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomJoined, room.BuildJoinedPayload(client.GetID())))
}

// handleSyncRoom 补发房间快照
func (h *Handler) handleSyncRoom(client types.ClientInterface, _ *protocol.Message) {
	if err := h.roomManager.SyncRoom(client); err != nil {
		sendError(client, err)
	}
}

// handleLeaveRoom 离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface, _ *protocol.Message) {
	h.roomManager.LeaveRoom(client)
	h.sessionManager.SetRoom(client.GetID(), "")
}

// handleAssignTeam 选择队伍
func (h *Handler) handleAssignTeam(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.AssignTeamPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := h.roomManager.AssignTeam(client, payload.TeamID); err != nil {
		sendError(client, err)
	}
}

// handleUpdateRules 修改房间规则
func (h *Handler) handleUpdateRules(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.UpdateRulesPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := h.roomManager.UpdateRules(client, *payload); err != nil {
		sendError(client, err)
	}
}
