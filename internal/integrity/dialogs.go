package integrity

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"talkwire/infrastructure/cache"
	"talkwire/internal/entity"
	"talkwire/internal/repository"
)

// anchorField mirrors anchorMember for the dialog-list hash: redis cannot
// hold an empty hash, so a cached-but-empty list keeps one zero-valued field
// under the empty key. It contributes nothing to the hash sum and never
// appears in returned dialog lists.
const anchorField = ""

// DialogsIntegrity caches one user's dialog list as a map from partner id to
// that dialog's latest-message digest. The list-level integrity hash is the
// sum of those digests plus the unread-dialog count.
type DialogsIntegrity struct {
	userId   int64
	key      string
	store    cache.Store
	messages repository.MessageRepository
	unread   *UnreadDialogs
	ttl      time.Duration
}

func NewDialogsIntegrity(
	userId int64,
	store cache.Store,
	messages repository.MessageRepository,
	unread *UnreadDialogs,
	ttl time.Duration,
) *DialogsIntegrity {
	return &DialogsIntegrity{
		userId:   userId,
		key:      fmt.Sprintf("dsi_%d", userId),
		store:    store,
		messages: messages,
		unread:   unread,
		ttl:      ttl,
	}
}

// GetHash sums the cached per-dialog digests and the unread count,
// recomputing the whole map on a cold cache.
func (d *DialogsIntegrity) GetHash(ctx context.Context) (int64, error) {
	hashes, err := d.store.HGetAll(ctx, d.key)
	if err != nil {
		hashes = nil
	}

	if len(hashes) == 0 {
		_, hashes, _, err = d.GetDialogs(ctx)
		if err != nil {
			return 0, err
		}
	}

	var hash int64
	for _, value := range hashes {
		n, parseErr := strconv.ParseInt(value, 10, 64)
		if parseErr != nil {
			continue
		}
		hash += n
	}

	udsNumber, err := d.unread.GetNumber(ctx)
	if err != nil {
		return 0, err
	}

	return hash + udsNumber, nil
}

// GetDialogs recomputes the authoritative dialog list from the message
// store: summaries ordered by latest-message time descending, the digest
// map, and the unread partner set. The digest map is written back whole.
func (d *DialogsIntegrity) GetDialogs(ctx context.Context) ([]entity.Dialog, map[string]string, map[int64]struct{}, error) {
	latest, err := d.messages.LatestPerPartner(ctx, d.userId)
	if err != nil {
		return nil, nil, nil, err
	}
	uds, err := d.messages.UnreadPartners(ctx, d.userId)
	if err != nil {
		return nil, nil, nil, err
	}

	type sortableDialog struct {
		dialog entity.Dialog
		time   time.Time
	}

	sortable := make([]sortableDialog, 0, len(latest))
	hashes := make(map[string]string, len(latest)+1)
	for partnerId, last := range latest {
		_, isUnread := uds[partnerId]
		dialogHash := DigestDialog(partnerId, last.Time)

		sortable = append(sortable, sortableDialog{
			dialog: entity.Dialog{
				Id:       partnerId,
				Text:     last.Text,
				IsUnread: isUnread,
				Hash:     dialogHash,
			},
			time: last.Time,
		})
		hashes[strconv.FormatInt(partnerId, 10)] = strconv.FormatInt(dialogHash, 10)
	}

	// Equal latest-message times are likely at second resolution, and the
	// map iteration above is randomized, so ties need an explicit secondary
	// key to keep repeated calls agreeing on the order.
	sort.SliceStable(sortable, func(i, j int) bool {
		if !sortable[i].time.Equal(sortable[j].time) {
			return sortable[i].time.After(sortable[j].time)
		}
		return sortable[i].dialog.Id < sortable[j].dialog.Id
	})

	dialogs := make([]entity.Dialog, 0, len(sortable))
	for _, s := range sortable {
		dialogs = append(dialogs, s.dialog)
	}

	hashes[anchorField] = "0"

	_ = d.store.Del(ctx, d.key)
	_ = d.store.HSet(ctx, d.key, hashes)
	_ = d.store.Expire(ctx, d.key, d.ttl)

	return dialogs, hashes, uds, nil
}

// ConsiderNew upserts one dialog's digest without recomputing the map.
func (d *DialogsIntegrity) ConsiderNew(ctx context.Context, dialogId, dialogHash int64) error {
	fields := map[string]string{
		strconv.FormatInt(dialogId, 10): strconv.FormatInt(dialogHash, 10),
	}

	exists, err := d.store.Exists(ctx, d.key)
	if err == nil && !exists {
		fields[anchorField] = "0"
	}

	return d.store.HSet(ctx, d.key, fields)
}

// MarkAsRead flips the stored unread flags for one dialog. The digest map is
// untouched: reading does not move the latest message.
func (d *DialogsIntegrity) MarkAsRead(ctx context.Context, dialogId int64) error {
	return d.messages.MarkRead(ctx, d.userId, dialogId)
}

// MarkAsDeleted soft-deletes the user's side of one dialog and drops its
// digest from the cached map.
func (d *DialogsIntegrity) MarkAsDeleted(ctx context.Context, dialogId int64) error {
	if err := d.messages.MarkDeleted(ctx, d.userId, dialogId); err != nil {
		return err
	}
	return d.store.HDel(ctx, d.key, strconv.FormatInt(dialogId, 10))
}
