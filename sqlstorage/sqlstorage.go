package sqlstorage

// 回答与标签的持久化：按(问题ID, 回答ID)去重，一个问题的标签只在该问题第一次入库时写入

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dszqbsm/sakura/parse/zhihu"
	"github.com/dszqbsm/sakura/sqldb"
	"go.uber.org/zap"
)

// label列为VARCHAR(50)
const maxLabelLen = 50

const (
	questionExistsSQL = "SELECT 1 FROM answer WHERE question_id = ? LIMIT 1"
	answerExistsSQL   = "SELECT 1 FROM answer WHERE question_id = ? AND answer_id = ? LIMIT 1"
	insertAnswerSQL   = "INSERT INTO answer (question_id, answer_id, question, answer, star) VALUES (?, ?, ?, ?, ?)"
	insertLabelSQL    = "INSERT INTO label (question_id, label) VALUES (?, ?)"
)

type SqlStore struct {
	db sqldb.DBer
	options
}

// 已入库的回答，附带其问题的标签
type StoredAnswer struct {
	QuestionID int64    `json:"questionId"`
	AnswerID   int64    `json:"answerId"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Star       int      `json:"star"`
	Labels     []string `json:"labels"`
}

type ListOptions struct {
	Limit   int
	Offset  int
	Keyword string // 匹配问题标题或回答内容，空为不过滤
}

type Counts struct {
	Answers   int `json:"answers"`
	Questions int `json:"questions"`
	Labels    int `json:"labels"`
}

func New(db sqldb.DBer, opts ...Option) *SqlStore {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &SqlStore{db: db, options: options}
}

func (s *SqlStore) QuestionExists(ctx context.Context, questionID int64) (bool, error) {
	ok, err := s.db.Exists(ctx, questionExistsSQL, questionID)
	if err != nil {
		return false, fmt.Errorf("query question %d: %w", questionID, err)
	}
	return ok, nil
}

func (s *SqlStore) AnswerExists(ctx context.Context, questionID, answerID int64) (bool, error) {
	ok, err := s.db.Exists(ctx, answerExistsSQL, questionID, answerID)
	if err != nil {
		return false, fmt.Errorf("query answer %d/%d: %w", questionID, answerID, err)
	}
	return ok, nil
}

// 写入一条回答；问题第一次出现时同时写入其标签。整体在一个事务内完成
func (s *SqlStore) AddAnswer(ctx context.Context, questionID, answerID int64, a *zhihu.Answer) error {
	if a == nil {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		known, err := sqldb.RowExists(tx.QueryRowContext(ctx, questionExistsSQL, questionID))
		if err != nil {
			return fmt.Errorf("query question %d: %w", questionID, err)
		}

		if _, err := tx.ExecContext(ctx, insertAnswerSQL, questionID, answerID, a.Question, a.Answer, a.Star); err != nil {
			return fmt.Errorf("insert answer %d/%d: %w", questionID, answerID, err)
		}

		if known || len(a.Labels) == 0 {
			return nil
		}
		for _, label := range a.Labels {
			if _, err := tx.ExecContext(ctx, insertLabelSQL, questionID, truncate(label, maxLabelLen)); err != nil {
				return fmt.Errorf("insert label of question %d: %w", questionID, err)
			}
		}
		s.logger.Debug("labels saved", zap.Int64("question_id", questionID), zap.Strings("labels", a.Labels))
		return nil
	})
}

// 按赞同数从高到低列出回答
func (s *SqlStore) ListAnswers(ctx context.Context, opt ListOptions) ([]StoredAnswer, error) {
	query := "SELECT question_id, answer_id, question, answer, star FROM answer"
	var args []interface{}
	if opt.Keyword != "" {
		query += " WHERE question LIKE ? OR answer LIKE ?"
		args = append(args, "%"+opt.Keyword+"%", "%"+opt.Keyword+"%")
	}
	query += " ORDER BY star DESC, id ASC"
	if opt.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opt.Limit, opt.Offset)
	}

	answers, err := s.queryAnswers(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return answers, nil
	}

	// sqlite只有一个连接，必须先关闭上一个结果集再查询标签
	labels, err := s.queryLabels(ctx, answers)
	if err != nil {
		return nil, err
	}
	for i := range answers {
		answers[i].Labels = labels[answers[i].QuestionID]
		if answers[i].Labels == nil {
			answers[i].Labels = []string{}
		}
	}
	return answers, nil
}

func (s *SqlStore) queryAnswers(ctx context.Context, query string, args ...interface{}) ([]StoredAnswer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	answers := []StoredAnswer{}
	for rows.Next() {
		var a StoredAnswer
		if err := rows.Scan(&a.QuestionID, &a.AnswerID, &a.Question, &a.Answer, &a.Star); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers, nil
}

func (s *SqlStore) queryLabels(ctx context.Context, answers []StoredAnswer) (map[int64][]string, error) {
	seen := make(map[int64]struct{})
	var ids []interface{}
	for _, a := range answers {
		if _, ok := seen[a.QuestionID]; ok {
			continue
		}
		seen[a.QuestionID] = struct{}{}
		ids = append(ids, a.QuestionID)
	}

	query := "SELECT question_id, label FROM label WHERE question_id IN (?" +
		strings.Repeat(", ?", len(ids)-1) + ") ORDER BY id ASC"
	rows, err := s.db.QueryContext(ctx, query, ids...)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	defer rows.Close()

	labels := make(map[int64][]string, len(ids))
	for rows.Next() {
		var (
			qid   int64
			label string
		)
		if err := rows.Scan(&qid, &label); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels[qid] = append(labels[qid], label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return labels, nil
}

func (s *SqlStore) Count(ctx context.Context) (Counts, error) {
	var c Counts
	row := s.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM answer), (SELECT COUNT(DISTINCT question_id) FROM answer), (SELECT COUNT(*) FROM label)")
	if err := row.Scan(&c.Answers, &c.Questions, &c.Labels); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, nil
		}
		return c, fmt.Errorf("count: %w", err)
	}
	return c, nil
}

func (s *SqlStore) Close() error {
	return s.db.Close()
}

// 按字符截断，避免切断多字节的中文
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
