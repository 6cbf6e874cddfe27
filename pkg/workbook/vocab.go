package workbook

import "github.com/agentstation/fcupdater/pkg/station"

// StationVocabulary is the header vocabulary of master and source sheets.
var StationVocabulary = Vocabulary{
	{ID: string(station.FieldRegion), Labels: []string{"지역"}, Required: true},
	{ID: string(station.FieldName), Labels: []string{"상호"}, Required: true},
	{ID: string(station.FieldBrand), Labels: []string{"상표"}},
	{ID: string(station.FieldSelf), Labels: []string{"셀프여부", "셀프"}},
	{ID: string(station.FieldAddress), Labels: []string{"주소"}, Required: true},
	{ID: string(station.FieldPhone), Labels: []string{"전화번호", "전화"}},
	{ID: string(station.FieldRegular), Labels: []string{"휘발유", "보통휘발유"}},
	{ID: string(station.FieldPremium), Labels: []string{"고급휘발유", "고급유"}},
	{ID: string(station.FieldDiesel), Labels: []string{"경유"}},
}

// Change-log column ids.
const (
	LogRegion       = "region"
	LogName         = "name"
	LogAddress      = "address"
	LogReason       = "reason"
	LogRegularOld   = "regular_old"
	LogRegularNew   = "regular_new"
	LogPremiumOld   = "premium_old"
	LogPremiumNew   = "premium_new"
	LogDieselOld    = "diesel_old"
	LogDieselNew    = "diesel_new"
	LogRegularDelta = "regular_delta"
	LogPremiumDelta = "premium_delta"
	LogDieselDelta  = "diesel_delta"
)

// ChangeLogVocabulary is the header vocabulary of the change-log sheet.
// The first label of each column is the one written into a new sheet.
var ChangeLogVocabulary = Vocabulary{
	{ID: LogRegion, Labels: []string{"지역"}, Required: true},
	{ID: LogName, Labels: []string{"상호"}, Required: true},
	{ID: LogAddress, Labels: []string{"주소"}, Required: true},
	{ID: LogReason, Labels: []string{"변경내용", "변경내역", "변경사유"}, Required: true},
	{ID: LogRegularOld, Labels: []string{"휘발유(이전)", "휘발유이전"}, Required: true},
	{ID: LogRegularNew, Labels: []string{"휘발유(신규)", "휘발유신규"}, Required: true},
	{ID: LogPremiumOld, Labels: []string{"고급유(이전)", "고급유이전"}, Required: true},
	{ID: LogPremiumNew, Labels: []string{"고급유(신규)", "고급유신규"}, Required: true},
	{ID: LogDieselOld, Labels: []string{"경유(이전)", "경유이전"}, Required: true},
	{ID: LogDieselNew, Labels: []string{"경유(신규)", "경유신규"}, Required: true},
	{ID: LogRegularDelta, Labels: []string{"휘발유 Δ", "휘발유△", "휘발유증감", "휘발유차이"}},
	{ID: LogPremiumDelta, Labels: []string{"고급유 Δ", "고급유△", "고급유증감", "고급유차이"}},
	{ID: LogDieselDelta, Labels: []string{"경유 Δ", "경유△", "경유증감", "경유차이"}},
}

// PriceLogColumns maps each price field to its old, new and delta log columns.
var PriceLogColumns = map[station.Field][3]string{
	station.FieldRegular: {LogRegularOld, LogRegularNew, LogRegularDelta},
	station.FieldPremium: {LogPremiumOld, LogPremiumNew, LogPremiumDelta},
	station.FieldDiesel:  {LogDieselOld, LogDieselNew, LogDieselDelta},
}
