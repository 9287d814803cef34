package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const episodeColumns = `id, guid, title, description, description_html, pub_date,
    duration_seconds, feed_url, audio_url, audio_path, created_at, updated_at`

// UpsertEpisode inserts an episode or refreshes its feed-derived fields when
// the GUID already exists. The row id and audio_path are preserved across
// upserts, so re-ingesting an unchanged feed does not disturb derived records.
// Returns the stored episode and whether anything was written.
func (s *Store) UpsertEpisode(ctx context.Context, episode *Episode) (*Episode, bool, error) {
	if episode == nil {
		return nil, false, errors.New("episode is nil")
	}
	if episode.GUID == "" {
		return nil, false, errors.New("episode guid is empty")
	}

	existing, err := s.EpisodeByGUID(ctx, episode.GUID)
	if err != nil {
		return nil, false, err
	}

	now := timestamp(time.Now())

	if existing == nil {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO episodes (
                guid, title, description, description_html, pub_date,
                duration_seconds, feed_url, audio_url, audio_path, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			episode.GUID,
			episode.Title,
			episode.Description,
			episode.DescriptionHTML,
			timestamp(episode.PubDate),
			episode.DurationSeconds,
			episode.FeedURL,
			episode.AudioURL,
			episode.AudioPath,
			now,
			now,
		)
		if err != nil {
			return nil, false, fmt.Errorf("insert episode: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, false, fmt.Errorf("last insert id: %w", err)
		}
		stored, err := s.EpisodeByID(ctx, id)
		return stored, true, err
	}

	unchanged := existing.Title == episode.Title &&
		existing.Description == episode.Description &&
		existing.DescriptionHTML == episode.DescriptionHTML &&
		existing.PubDate.Equal(episode.PubDate.UTC()) &&
		existing.DurationSeconds == episode.DurationSeconds &&
		existing.FeedURL == episode.FeedURL &&
		existing.AudioURL == episode.AudioURL
	if unchanged {
		return existing, false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE episodes
         SET title = ?, description = ?, description_html = ?, pub_date = ?,
             duration_seconds = ?, feed_url = ?, audio_url = ?, updated_at = ?
         WHERE guid = ?`,
		episode.Title,
		episode.Description,
		episode.DescriptionHTML,
		timestamp(episode.PubDate),
		episode.DurationSeconds,
		episode.FeedURL,
		episode.AudioURL,
		now,
		episode.GUID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("update episode: %w", err)
	}
	stored, err := s.EpisodeByGUID(ctx, episode.GUID)
	return stored, true, err
}

// SetEpisodeAudioPath records the local path of a fetched audio file.
func (s *Store) SetEpisodeAudioPath(ctx context.Context, episodeID int64, audioPath string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE episodes SET audio_path = ?, updated_at = ? WHERE id = ?`,
		audioPath, timestamp(time.Now()), episodeID,
	)
	if err != nil {
		return fmt.Errorf("set audio path: %w", err)
	}
	return nil
}

// EpisodeByID fetches an episode by identifier. Missing rows return nil.
func (s *Store) EpisodeByID(ctx context.Context, id int64) (*Episode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, id)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return episode, nil
}

// EpisodeByGUID fetches an episode by feed GUID. Missing rows return nil.
func (s *Store) EpisodeByGUID(ctx context.Context, guid string) (*Episode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE guid = ?`, guid)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get episode by guid: %w", err)
	}
	return episode, nil
}

// ListEpisodes returns all episodes in chronological order (pub_date, then
// guid for stability when two episodes share a date).
func (s *Store) ListEpisodes(ctx context.Context) ([]*Episode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+episodeColumns+` FROM episodes ORDER BY pub_date, guid`)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, episode)
	}
	return episodes, rows.Err()
}

// EpisodeOrdinalInYear returns the 1-based position of the episode among all
// stored episodes published in the same calendar year, ordered by pub_date
// then guid. This ordinal is the middle component of docket numbers.
func (s *Store) EpisodeOrdinalInYear(ctx context.Context, episodeID int64) (int, error) {
	episode, err := s.EpisodeByID(ctx, episodeID)
	if err != nil {
		return 0, err
	}
	if episode == nil {
		return 0, fmt.Errorf("episode %d not found", episodeID)
	}

	year := episode.PubDate.UTC().Year()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pub_date FROM episodes ORDER BY pub_date, guid`)
	if err != nil {
		return 0, fmt.Errorf("list episodes for ordinal: %w", err)
	}
	defer rows.Close()

	ordinal := 0
	for rows.Next() {
		var id int64
		var pubDate string
		if err := rows.Scan(&id, &pubDate); err != nil {
			return 0, fmt.Errorf("scan episode ordinal: %w", err)
		}
		if parseTimestamp(pubDate).Year() != year {
			continue
		}
		ordinal++
		if id == episodeID {
			return ordinal, nil
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("episode %d not found in year %d ordering", episodeID, year)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEpisode(scanner rowScanner) (*Episode, error) {
	var episode Episode
	var pubDate, createdAt, updatedAt string
	err := scanner.Scan(
		&episode.ID,
		&episode.GUID,
		&episode.Title,
		&episode.Description,
		&episode.DescriptionHTML,
		&pubDate,
		&episode.DurationSeconds,
		&episode.FeedURL,
		&episode.AudioURL,
		&episode.AudioPath,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	episode.PubDate = parseTimestamp(pubDate)
	episode.CreatedAt = parseTimestamp(createdAt)
	episode.UpdatedAt = parseTimestamp(updatedAt)
	return &episode, nil
}
