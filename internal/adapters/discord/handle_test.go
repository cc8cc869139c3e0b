package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

const chatInputBody = `{"id":"1","application_id":"app","type":2,"token":"tok",
	"member":{"user":{"id":"u1","username":"ana"},"permissions":"0"},"guild_id":"g1",
	"data":{"id":"c","name":"ping","type":1}}`

func TestHandleReplyIsEphemeralByDefault(t *testing.T) {
	rest := &fakeRest{}
	ic := mustInteraction(t, chatInputBody, rest).(*ChatInputCommand)

	if err := ic.Reply(context.Background(), &discordgo.InteractionResponseData{Content: "hola"}); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	resp := rest.lastRespond()
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Errorf("response type = %d", resp.Type)
	}
	if resp.Data.Flags&discordgo.MessageFlagsEphemeral == 0 {
		t.Error("Reply should be ephemeral")
	}
	if ic.State() != Replied {
		t.Errorf("state = %s, want replied", ic.State())
	}
}

func TestHandleReplyPublic(t *testing.T) {
	rest := &fakeRest{}
	ic := mustInteraction(t, chatInputBody, rest).(*ChatInputCommand)

	if err := ic.ReplyPublic(context.Background(), &discordgo.InteractionResponseData{Content: "hola"}); err != nil {
		t.Fatalf("ReplyPublic: %v", err)
	}
	if rest.lastRespond().Data.Flags&discordgo.MessageFlagsEphemeral != 0 {
		t.Error("ReplyPublic should not be ephemeral")
	}
}

func TestHandleTransitions(t *testing.T) {
	ctx := context.Background()
	rest := &fakeRest{}
	ic := mustInteraction(t, chatInputBody, rest).(*ChatInputCommand)

	// nada enviado todavía: editar o seguir es inválido
	if _, err := ic.EditReply(ctx, &discordgo.WebhookEdit{}); !errors.Is(err, ErrNotResponded) {
		t.Errorf("EditReply before respond: got %v", err)
	}
	if _, err := ic.FollowUp(ctx, &discordgo.WebhookParams{Content: "x"}); !errors.Is(err, ErrNotResponded) {
		t.Errorf("FollowUp before respond: got %v", err)
	}
	if err := ic.DeleteReply(ctx); !errors.Is(err, ErrNotResponded) {
		t.Errorf("DeleteReply before respond: got %v", err)
	}

	if err := ic.DeferReply(ctx, true); err != nil {
		t.Fatalf("DeferReply: %v", err)
	}
	if ic.State() != Deferred {
		t.Fatalf("state = %s, want deferred", ic.State())
	}
	if resp := rest.lastRespond(); resp.Data == nil || resp.Data.Flags&discordgo.MessageFlagsEphemeral == 0 {
		t.Error("ephemeral defer should carry the flag")
	}

	// una sola respuesta inicial
	if err := ic.ReplyEphemeral(ctx, "tarde"); !errors.Is(err, ErrAlreadyResponded) {
		t.Errorf("second initial response: got %v", err)
	}
	if err := ic.ShowModal(ctx, &discordgo.InteractionResponseData{CustomID: "m"}); !errors.Is(err, ErrAlreadyResponded) {
		t.Errorf("modal after defer: got %v", err)
	}

	content := "listo"
	if _, err := ic.EditReply(ctx, &discordgo.WebhookEdit{Content: &content}); err != nil {
		t.Fatalf("EditReply: %v", err)
	}
	if ic.State() != Replied {
		t.Errorf("state after edit = %s, want replied", ic.State())
	}
	msg, err := ic.FollowUp(ctx, &discordgo.WebhookParams{Content: "más"})
	if err != nil {
		t.Fatalf("FollowUp: %v", err)
	}
	if _, err := ic.EditMessage(ctx, msg.ID, &discordgo.WebhookEdit{Content: &content}); err != nil {
		t.Errorf("EditMessage: %v", err)
	}
	if err := ic.DeleteMessage(ctx, msg.ID); err != nil {
		t.Errorf("DeleteMessage: %v", err)
	}
	if err := ic.DeleteReply(ctx); err != nil {
		t.Errorf("DeleteReply: %v", err)
	}
	if rest.respondCount() != 1 {
		t.Errorf("initial responses = %d, want 1", rest.respondCount())
	}
	if rest.deletes != 2 {
		t.Errorf("deletes = %d, want 2", rest.deletes)
	}
}

func TestHandleFailedRespondKeepsState(t *testing.T) {
	rest := &fakeRest{respondErr: errors.New("boom")}
	h := NewHandle(rest, "1", "app", "tok", discordgo.InteractionApplicationCommand, 0)

	if err := h.reply(context.Background(), &discordgo.InteractionResponseData{}); err == nil {
		t.Fatal("expected error")
	}
	if h.State() != NotResponded {
		t.Errorf("state = %s, want not_responded", h.State())
	}
	if h.Initial() != nil {
		t.Error("Initial should stay nil")
	}
}

func TestHandleTimeout(t *testing.T) {
	rest := &fakeRest{delay: time.Second}
	h := NewHandle(rest, "1", "app", "tok", discordgo.InteractionApplicationCommand, 20*time.Millisecond)

	start := time.Now()
	err := h.reply(context.Background(), &discordgo.InteractionResponseData{Content: "x"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("timeout did not cut the call short")
	}
	if h.State() != NotResponded {
		t.Errorf("state = %s", h.State())
	}
}

func TestHandleAutocompleteNeverSendsNilChoices(t *testing.T) {
	rest := &fakeRest{}
	h := NewHandle(rest, "1", "app", "tok", discordgo.InteractionApplicationCommandAutocomplete, 0)
	if err := h.autocomplete(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	resp := rest.lastRespond()
	if resp.Type != discordgo.InteractionApplicationCommandAutocompleteResult || resp.Data.Choices == nil {
		t.Errorf("bad autocomplete response: %+v", resp)
	}
}

func TestSendPicksByState(t *testing.T) {
	ctx := context.Background()
	rest := &fakeRest{}
	ic := mustInteraction(t, chatInputBody, rest).(*ChatInputCommand)

	if err := ic.Send(ctx, "uno"); err != nil {
		t.Fatal(err)
	}
	if err := ic.Send(ctx, "dos"); err != nil {
		t.Fatal(err)
	}
	if rest.respondCount() != 1 || len(rest.followups) != 1 {
		t.Errorf("responds=%d followups=%d, want 1/1", rest.respondCount(), len(rest.followups))
	}
	if rest.followups[0].Flags&discordgo.MessageFlagsEphemeral == 0 {
		t.Error("Send follow-up should be ephemeral")
	}

	rest2 := &fakeRest{}
	deferred := mustInteraction(t, chatInputBody, rest2).(*ChatInputCommand)
	_ = deferred.DeferReply(ctx, false)
	if err := deferred.SendPublic(ctx, "tres"); err != nil {
		t.Fatal(err)
	}
	if len(rest2.edits) != 1 || *rest2.edits[0].Content != "tres" {
		t.Errorf("deferred SendPublic should edit the reply, edits=%d", len(rest2.edits))
	}
}

func TestPermissions(t *testing.T) {
	admin := mustInteraction(t, `{"id":"1","application_id":"app","type":2,"token":"t","guild_id":"g",
		"member":{"user":{"id":"u1"},"roles":["mod"],"permissions":"8"},"app_permissions":"2048",
		"data":{"name":"x","type":1}}`, &fakeRest{}).(*ChatInputCommand)
	if !admin.HasPermission(discordgo.PermissionBanMembers) {
		t.Error("administrator implies every permission")
	}
	if !admin.AppHasPermission(discordgo.PermissionSendMessages) {
		t.Error("app should have SendMessages")
	}
	if admin.AppHasPermission(discordgo.PermissionManageRoles) {
		t.Error("app should not have ManageRoles")
	}
	if !admin.IsAdmin() {
		t.Error("administrator bit should make IsAdmin true")
	}

	dm := mustInteraction(t, `{"id":"2","application_id":"app","type":2,"token":"t",
		"user":{"id":"u2"},"data":{"name":"x","type":1}}`, &fakeRest{}).(*ChatInputCommand)
	if dm.HasPermission(discordgo.PermissionSendMessages) || dm.IsAdmin("mod") {
		t.Error("no member means no permissions")
	}
}
