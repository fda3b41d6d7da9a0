package publish

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ivankudzin/classibot/internal/domain/model"
)

type sentCall struct {
	kind    string
	chatID  int64
	payload string
	fileIDs []string
}

type fakeMessenger struct {
	calls      []sentCall
	failPhoto  bool
	failAlbum  bool
	failChatID int64
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	if f.failChatID != 0 && chatID == f.failChatID {
		return errors.New("chat unavailable")
	}
	f.calls = append(f.calls, sentCall{kind: "text", chatID: chatID, payload: text})
	return nil
}

func (f *fakeMessenger) SendListingPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	if f.failPhoto || (f.failChatID != 0 && chatID == f.failChatID) {
		return errors.New("photo send failed")
	}
	f.calls = append(f.calls, sentCall{kind: "photo", chatID: chatID, payload: caption, fileIDs: []string{fileID}})
	return nil
}

func (f *fakeMessenger) SendMediaGroup(ctx context.Context, chatID int64, fileIDs []string) error {
	if f.failAlbum {
		return errors.New("album send failed")
	}
	f.calls = append(f.calls, sentCall{kind: "album", chatID: chatID, fileIDs: fileIDs})
	return nil
}

func sampleListing(photoCount int) model.Listing {
	listing := model.Listing{
		ID:          17,
		Category:    "Продам",
		District:    "Центр",
		Title:       "Продам велосипед",
		Description: "Майже новий",
		Contacts:    "@seller",
	}
	for i := 0; i < photoCount; i++ {
		listing.Photos = append(listing.Photos, model.Photo{FileID: string(rune('a' + i))})
	}
	return listing
}

func TestPublishSendsCaptionedPhotoThenAlbum(t *testing.T) {
	messenger := &fakeMessenger{}
	svc := NewService(messenger, nil)

	if err := svc.Publish(context.Background(), -100500, sampleListing(3)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(messenger.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(messenger.calls))
	}
	if messenger.calls[0].kind != "photo" || messenger.calls[0].fileIDs[0] != "a" {
		t.Fatalf("first call = %+v", messenger.calls[0])
	}
	if !strings.Contains(messenger.calls[0].payload, "<b>Продам велосипед</b>") {
		t.Fatalf("caption = %q", messenger.calls[0].payload)
	}
	if messenger.calls[1].kind != "album" || len(messenger.calls[1].fileIDs) != 2 {
		t.Fatalf("second call = %+v", messenger.calls[1])
	}
}

func TestPublishSingleSendForOnePhoto(t *testing.T) {
	messenger := &fakeMessenger{}
	svc := NewService(messenger, nil)

	if err := svc.Publish(context.Background(), -100500, sampleListing(1)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(messenger.calls) != 1 || messenger.calls[0].kind != "photo" {
		t.Fatalf("calls = %+v", messenger.calls)
	}
}

func TestPublishFailsWhenCaptionedPhotoFails(t *testing.T) {
	messenger := &fakeMessenger{failPhoto: true}
	svc := NewService(messenger, nil)

	if err := svc.Publish(context.Background(), -100500, sampleListing(2)); err == nil {
		t.Fatal("expected error when the captioned photo cannot be sent")
	}
	if len(messenger.calls) != 0 {
		t.Fatalf("no calls expected, got %+v", messenger.calls)
	}
}

func TestPublishToleratesAlbumFailure(t *testing.T) {
	messenger := &fakeMessenger{failAlbum: true}
	svc := NewService(messenger, nil)

	if err := svc.Publish(context.Background(), -100500, sampleListing(5)); err != nil {
		t.Fatalf("album failure must not fail the publish: %v", err)
	}
}

func TestMirrorContinuesPastDeadChat(t *testing.T) {
	messenger := &fakeMessenger{failChatID: -2}
	svc := NewService(messenger, nil)

	svc.Mirror(context.Background(), []int64{-1, -2, -3}, sampleListing(1))

	delivered := map[int64]bool{}
	for _, call := range messenger.calls {
		delivered[call.chatID] = true
	}
	if !delivered[-1] || !delivered[-3] || delivered[-2] {
		t.Fatalf("delivered = %+v", delivered)
	}
}

func TestRenderCaptionEscapesAndTags(t *testing.T) {
	listing := model.Listing{
		Category:    "Віддам даром",
		District:    "Центр",
		Title:       "Стіл <дуб>",
		Description: "Висота 75 см & стільниця ціла",
		Contacts:    "@owner",
	}

	caption := RenderCaption(listing)

	if !strings.Contains(caption, "&lt;дуб&gt;") {
		t.Fatalf("title not escaped: %q", caption)
	}
	if !strings.Contains(caption, "&amp;") {
		t.Fatalf("description not escaped: %q", caption)
	}
	if !strings.Contains(caption, "#Віддам_даром") || !strings.Contains(caption, "#Центр") {
		t.Fatalf("hashtags missing: %q", caption)
	}
}

func TestRenderCaptionTruncatesLongDescription(t *testing.T) {
	listing := sampleListing(0)
	listing.Description = strings.Repeat("о", 2000)

	caption := RenderCaption(listing)

	if got := len([]rune(caption)); got > 1024 {
		t.Fatalf("caption length = %d runes, want <= 1024", got)
	}
	if !strings.Contains(caption, "…") {
		t.Fatalf("truncated caption must end the description with an ellipsis: %q", caption[:80])
	}
	if !strings.Contains(caption, "#Продам") {
		t.Fatal("hashtag line must survive truncation")
	}
}
