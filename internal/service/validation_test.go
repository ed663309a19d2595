package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepdiary/internal"
	"github.com/yourname/sleepdiary/internal/storage/mocks"
)

func TestDecodeDiary_MalformedBody(t *testing.T) {
	for _, body := range []string{"", "   ", "{", "not json", `{"date": }`} {
		_, _, err := DecodeDiary([]byte(body), ModeFull)
		assert.ErrorIs(t, err, ErrMalformedJSON, "body %q", body)
	}
}

func TestDecodeDiary_NotAnObject(t *testing.T) {
	for _, body := range []string{"[]", `"x"`, "42", "true", "null"} {
		_, fe, err := DecodeDiary([]byte(body), ModePartial)
		require.NoError(t, err)
		assert.Equal(t, FieldErrors{SchemaKey: {MsgInvalidInput}}, fe, "body %q", body)
	}
}

func TestDecodeDiary_FullRequiresEveryField(t *testing.T) {
	_, fe, err := DecodeDiary([]byte(`{"id": 5, "userId": 9}`), ModeFull)
	require.NoError(t, err)
	assert.Equal(t, FieldErrors{
		"date":         {MsgMissing},
		"timeIntoBed":  {MsgMissing},
		"timeOutOfBed": {MsgMissing},
		"sleepQuality": {MsgMissing},
	}, fe)
}

func TestDecodeDiary_PartialAcceptsEmpty(t *testing.T) {
	patch, fe, err := DecodeDiary([]byte(`{"unknown": 1}`), ModePartial)
	require.NoError(t, err)
	assert.Empty(t, fe)
	assert.True(t, patch.Empty())
}

func TestDecodeDiary_FieldErrorsAccumulate(t *testing.T) {
	body := `{"date": "2024-13-01", "timeIntoBed": null, "timeOutOfBed": "yesterday", "sleepQuality": 11}`
	_, fe, err := DecodeDiary([]byte(body), ModeFull)
	require.NoError(t, err)
	assert.Equal(t, FieldErrors{
		"date":         {MsgInvalidDate},
		"timeIntoBed":  {MsgNull},
		"timeOutOfBed": {MsgInvalidTime},
		"sleepQuality": {MsgInvalidValue},
	}, fe)
}

func TestDecodeDiary_Date(t *testing.T) {
	patch, fe, err := DecodeDiary([]byte(`{"date": "2024-02-29"}`), ModePartial)
	require.NoError(t, err)
	assert.Empty(t, fe)
	require.NotNil(t, patch.Date)
	assert.Equal(t, "2024-02-29", patch.Date.String())

	for _, raw := range []string{`"2023-02-29"`, `"01/02/2024"`, `20240101`, `"2024-01-01T00:00:00Z"`} {
		_, fe, err := DecodeDiary([]byte(`{"date": `+raw+`}`), ModePartial)
		require.NoError(t, err)
		assert.Equal(t, []string{MsgInvalidDate}, fe["date"], "date %s", raw)
	}
}

func TestDecodeDiary_TimestampsNormalizeToUTC(t *testing.T) {
	want := time.Date(2016, 1, 1, 6, 0, 0, 0, time.UTC)
	inputs := []string{
		"2016-01-01T06:00:00+00:00",
		"2016-01-01T06:00:00Z",
		"2016-01-01T01:00:00-05:00",
		"2016-01-01T11:30:00+05:30",
		"2016-01-01T11:30:00+0530",
		"2016-01-01 06:00:00+00:00",
		"2016-01-01T06:00:00",
		"2016-01-01T06:00",
	}
	for _, in := range inputs {
		patch, fe, err := DecodeDiary([]byte(`{"timeIntoBed": "`+in+`"}`), ModePartial)
		require.NoError(t, err)
		require.Empty(t, fe, in)
		require.NotNil(t, patch.TimeIntoBed, in)
		assert.True(t, want.Equal(*patch.TimeIntoBed), "%s parsed as %s", in, patch.TimeIntoBed)
		assert.Equal(t, time.UTC, patch.TimeIntoBed.Location())
	}
}

func TestDecodeDiary_TimestampTruncatedToMicroseconds(t *testing.T) {
	patch, fe, err := DecodeDiary([]byte(`{"timeOutOfBed": "2016-01-01T06:00:00.123456789Z"}`), ModePartial)
	require.NoError(t, err)
	require.Empty(t, fe)
	assert.Equal(t, 123456000, patch.TimeOutOfBed.Nanosecond())
	assert.Equal(t, "2016-01-01T06:00:00.123456+00:00", internal.FormatTimestamp(*patch.TimeOutOfBed))
}

func TestDecodeDiary_YearOutOfRange(t *testing.T) {
	for _, in := range []string{
		"0000-01-01T00:30:00+01:00",
		"0000-06-01T12:00:00Z",
		"9999-12-31T23:30:00-01:00",
	} {
		_, fe, err := DecodeDiary([]byte(`{"timeIntoBed": "`+in+`"}`), ModePartial)
		require.NoError(t, err)
		assert.Equal(t, []string{MsgInvalidTime}, fe["timeIntoBed"], in)
	}

	_, fe, err := DecodeDiary([]byte(`{"date": "0000-01-01"}`), ModePartial)
	require.NoError(t, err)
	assert.Equal(t, []string{MsgInvalidDate}, fe["date"])

	patch, fe, err := DecodeDiary([]byte(`{"date": "0001-01-01", "timeIntoBed": "0001-01-01T00:30:00Z", "timeOutOfBed": "9999-12-31T23:00:00Z"}`), ModePartial)
	require.NoError(t, err)
	assert.Empty(t, fe)
	assert.Equal(t, "0001-01-01", patch.Date.String())
	assert.Equal(t, 9999, patch.TimeOutOfBed.Year())
}

func TestDecodeDiary_SleepQuality(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr string
	}{
		{raw: `0`, want: 0},
		{raw: `10`, want: 10},
		{raw: `"7"`, want: 7},
		{raw: `7.0`, want: 7},
		{raw: `-1`, wantErr: MsgInvalidValue},
		{raw: `11`, wantErr: MsgInvalidValue},
		{raw: `99999999999999`, wantErr: MsgInvalidValue},
		{raw: `7.5`, wantErr: MsgInvalidInt},
		{raw: `"seven"`, wantErr: MsgInvalidInt},
		{raw: `true`, wantErr: MsgInvalidInt},
		{raw: `[1]`, wantErr: MsgInvalidInt},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			patch, fe, err := DecodeDiary([]byte(`{"sleepQuality": `+tt.raw+`}`), ModePartial)
			require.NoError(t, err)
			if tt.wantErr != "" {
				assert.Equal(t, []string{tt.wantErr}, fe["sleepQuality"])
				return
			}
			assert.Empty(t, fe)
			require.NotNil(t, patch.SleepQuality)
			assert.Equal(t, tt.want, *patch.SleepQuality)
		})
	}
}

func TestValidateDiary_DayUniqueness(t *testing.T) {
	ctx := context.Background()
	date, _ := internal.ParseDate("2024-01-01")

	tx := new(mocks.Tx)
	tx.On("DiaryDateTaken", mock.Anything, int64(3), date, int64(0)).Return(true, nil).Once()

	_, err := ValidateDiary(ctx, tx, []byte(`{"date": "2024-01-01"}`), ModePartial, ValidationContext{UserID: 3})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FieldErrors{"date": {MsgOnePerDay}}, verr.Fields)
	tx.AssertExpectations(t)
}

func TestValidateDiary_UniquenessRunsAlongsideFieldErrors(t *testing.T) {
	ctx := context.Background()
	date, _ := internal.ParseDate("2024-01-01")

	tx := new(mocks.Tx)
	tx.On("DiaryDateTaken", mock.Anything, int64(3), date, int64(0)).Return(true, nil).Once()

	_, err := ValidateDiary(ctx, tx, []byte(`{"date": "2024-01-01", "sleepQuality": -1}`), ModeFull, ValidationContext{UserID: 3})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{MsgOnePerDay}, verr.Fields["date"])
	assert.Equal(t, []string{MsgInvalidValue}, verr.Fields["sleepQuality"])
	assert.Equal(t, []string{MsgMissing}, verr.Fields["timeIntoBed"])
}

func TestValidateDiary_SkipsStoreWithoutDate(t *testing.T) {
	tx := new(mocks.Tx)
	patch, err := ValidateDiary(context.Background(), tx, []byte(`{"sleepQuality": 4}`), ModePartial, ValidationContext{UserID: 3, ExcludeID: 8})
	require.NoError(t, err)
	assert.Equal(t, 4, *patch.SleepQuality)
	tx.AssertNotCalled(t, "DiaryDateTaken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateDiary_TimeOrderUsesCurrentRecord(t *testing.T) {
	into := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	current := &internal.Diary{ID: 8, UserID: 3, TimeIntoBed: into, TimeOutOfBed: into.Add(8 * time.Hour)}
	vc := ValidationContext{UserID: 3, ExcludeID: 8, Current: current}
	tx := new(mocks.Tx)

	_, err := ValidateDiary(context.Background(), tx, []byte(`{"timeOutOfBed": "2024-01-01T21:00:00Z"}`), ModePartial, vc)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FieldErrors{"timeOutOfBed": {MsgTimeOrder}}, verr.Fields)

	_, err = ValidateDiary(context.Background(), tx, []byte(`{"timeIntoBed": "2024-01-01T23:00:00Z"}`), ModePartial, vc)
	assert.NoError(t, err)

	_, err = ValidateDiary(context.Background(), tx, []byte(`{"timeIntoBed": "2024-01-02T07:00:00Z"}`), ModePartial, vc)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FieldErrors{"timeOutOfBed": {MsgTimeOrder}}, verr.Fields)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: FieldErrors{"sleepQuality": {MsgInvalidValue}, "date": {MsgInvalidDate}}}
	assert.Equal(t, "validation failed: date: Not a valid date.; sleepQuality: Invalid value.", err.Error())
}
