package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "ridesplit.v1.LedgerService"

// Procedure paths of the LedgerService.
const (
	LedgerServiceGetSnapshotProcedure     = "/ridesplit.v1.LedgerService/GetSnapshot"
	LedgerServiceAddCompanionProcedure    = "/ridesplit.v1.LedgerService/AddCompanion"
	LedgerServiceRenameCompanionProcedure = "/ridesplit.v1.LedgerService/RenameCompanion"
	LedgerServiceDeleteCompanionProcedure = "/ridesplit.v1.LedgerService/DeleteCompanion"
	LedgerServiceUpsertTripProcedure      = "/ridesplit.v1.LedgerService/UpsertTrip"
	LedgerServiceSetTripsProcedure        = "/ridesplit.v1.LedgerService/SetTrips"
	LedgerServiceAddPaymentProcedure      = "/ridesplit.v1.LedgerService/AddPayment"
	LedgerServiceEditPaymentProcedure     = "/ridesplit.v1.LedgerService/EditPayment"
	LedgerServiceDeletePaymentProcedure   = "/ridesplit.v1.LedgerService/DeletePayment"
	LedgerServiceTransferPaymentProcedure = "/ridesplit.v1.LedgerService/TransferPayment"
	LedgerServiceGetBalanceProcedure      = "/ridesplit.v1.LedgerService/GetBalance"
	LedgerServiceGetWeeklyChargeProcedure = "/ridesplit.v1.LedgerService/GetWeeklyCharge"
)

// LedgerServiceHandler is implemented by LedgerService.
type LedgerServiceHandler interface {
	GetSnapshot(context.Context, *connect.Request[GetSnapshotRequest]) (*connect.Response[SnapshotResponse], error)
	AddCompanion(context.Context, *connect.Request[AddCompanionRequest]) (*connect.Response[CompanionResponse], error)
	RenameCompanion(context.Context, *connect.Request[RenameCompanionRequest]) (*connect.Response[CompanionResponse], error)
	DeleteCompanion(context.Context, *connect.Request[DeleteCompanionRequest]) (*connect.Response[SnapshotResponse], error)
	UpsertTrip(context.Context, *connect.Request[UpsertTripRequest]) (*connect.Response[SnapshotResponse], error)
	SetTrips(context.Context, *connect.Request[SetTripsRequest]) (*connect.Response[SnapshotResponse], error)
	AddPayment(context.Context, *connect.Request[AddPaymentRequest]) (*connect.Response[PaymentResponse], error)
	EditPayment(context.Context, *connect.Request[EditPaymentRequest]) (*connect.Response[PaymentResponse], error)
	DeletePayment(context.Context, *connect.Request[DeletePaymentRequest]) (*connect.Response[SnapshotResponse], error)
	TransferPayment(context.Context, *connect.Request[TransferPaymentRequest]) (*connect.Response[SnapshotResponse], error)
	GetBalance(context.Context, *connect.Request[GetBalanceRequest]) (*connect.Response[GetBalanceResponse], error)
	GetWeeklyCharge(context.Context, *connect.Request[GetWeeklyChargeRequest]) (*connect.Response[GetWeeklyChargeResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler for svc and returns the path
// prefix to mount it on.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(LedgerServiceGetSnapshotProcedure, connect.NewUnaryHandler(LedgerServiceGetSnapshotProcedure, svc.GetSnapshot, opts...))
	mux.Handle(LedgerServiceAddCompanionProcedure, connect.NewUnaryHandler(LedgerServiceAddCompanionProcedure, svc.AddCompanion, opts...))
	mux.Handle(LedgerServiceRenameCompanionProcedure, connect.NewUnaryHandler(LedgerServiceRenameCompanionProcedure, svc.RenameCompanion, opts...))
	mux.Handle(LedgerServiceDeleteCompanionProcedure, connect.NewUnaryHandler(LedgerServiceDeleteCompanionProcedure, svc.DeleteCompanion, opts...))
	mux.Handle(LedgerServiceUpsertTripProcedure, connect.NewUnaryHandler(LedgerServiceUpsertTripProcedure, svc.UpsertTrip, opts...))
	mux.Handle(LedgerServiceSetTripsProcedure, connect.NewUnaryHandler(LedgerServiceSetTripsProcedure, svc.SetTrips, opts...))
	mux.Handle(LedgerServiceAddPaymentProcedure, connect.NewUnaryHandler(LedgerServiceAddPaymentProcedure, svc.AddPayment, opts...))
	mux.Handle(LedgerServiceEditPaymentProcedure, connect.NewUnaryHandler(LedgerServiceEditPaymentProcedure, svc.EditPayment, opts...))
	mux.Handle(LedgerServiceDeletePaymentProcedure, connect.NewUnaryHandler(LedgerServiceDeletePaymentProcedure, svc.DeletePayment, opts...))
	mux.Handle(LedgerServiceTransferPaymentProcedure, connect.NewUnaryHandler(LedgerServiceTransferPaymentProcedure, svc.TransferPayment, opts...))
	mux.Handle(LedgerServiceGetBalanceProcedure, connect.NewUnaryHandler(LedgerServiceGetBalanceProcedure, svc.GetBalance, opts...))
	mux.Handle(LedgerServiceGetWeeklyChargeProcedure, connect.NewUnaryHandler(LedgerServiceGetWeeklyChargeProcedure, svc.GetWeeklyCharge, opts...))

	return "/" + LedgerServiceName + "/", mux
}

// LedgerServiceClient calls a remote LedgerService.
type LedgerServiceClient struct {
	getSnapshot     *connect.Client[GetSnapshotRequest, SnapshotResponse]
	addCompanion    *connect.Client[AddCompanionRequest, CompanionResponse]
	renameCompanion *connect.Client[RenameCompanionRequest, CompanionResponse]
	deleteCompanion *connect.Client[DeleteCompanionRequest, SnapshotResponse]
	upsertTrip      *connect.Client[UpsertTripRequest, SnapshotResponse]
	setTrips        *connect.Client[SetTripsRequest, SnapshotResponse]
	addPayment      *connect.Client[AddPaymentRequest, PaymentResponse]
	editPayment     *connect.Client[EditPaymentRequest, PaymentResponse]
	deletePayment   *connect.Client[DeletePaymentRequest, SnapshotResponse]
	transferPayment *connect.Client[TransferPaymentRequest, SnapshotResponse]
	getBalance      *connect.Client[GetBalanceRequest, GetBalanceResponse]
	getWeeklyCharge *connect.Client[GetWeeklyChargeRequest, GetWeeklyChargeResponse]
}

// NewLedgerServiceClient creates a client for the LedgerService at baseURL.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &LedgerServiceClient{
		getSnapshot:     connect.NewClient[GetSnapshotRequest, SnapshotResponse](httpClient, baseURL+LedgerServiceGetSnapshotProcedure, opts...),
		addCompanion:    connect.NewClient[AddCompanionRequest, CompanionResponse](httpClient, baseURL+LedgerServiceAddCompanionProcedure, opts...),
		renameCompanion: connect.NewClient[RenameCompanionRequest, CompanionResponse](httpClient, baseURL+LedgerServiceRenameCompanionProcedure, opts...),
		deleteCompanion: connect.NewClient[DeleteCompanionRequest, SnapshotResponse](httpClient, baseURL+LedgerServiceDeleteCompanionProcedure, opts...),
		upsertTrip:      connect.NewClient[UpsertTripRequest, SnapshotResponse](httpClient, baseURL+LedgerServiceUpsertTripProcedure, opts...),
		setTrips:        connect.NewClient[SetTripsRequest, SnapshotResponse](httpClient, baseURL+LedgerServiceSetTripsProcedure, opts...),
		addPayment:      connect.NewClient[AddPaymentRequest, PaymentResponse](httpClient, baseURL+LedgerServiceAddPaymentProcedure, opts...),
		editPayment:     connect.NewClient[EditPaymentRequest, PaymentResponse](httpClient, baseURL+LedgerServiceEditPaymentProcedure, opts...),
		deletePayment:   connect.NewClient[DeletePaymentRequest, SnapshotResponse](httpClient, baseURL+LedgerServiceDeletePaymentProcedure, opts...),
		transferPayment: connect.NewClient[TransferPaymentRequest, SnapshotResponse](httpClient, baseURL+LedgerServiceTransferPaymentProcedure, opts...),
		getBalance:      connect.NewClient[GetBalanceRequest, GetBalanceResponse](httpClient, baseURL+LedgerServiceGetBalanceProcedure, opts...),
		getWeeklyCharge: connect.NewClient[GetWeeklyChargeRequest, GetWeeklyChargeResponse](httpClient, baseURL+LedgerServiceGetWeeklyChargeProcedure, opts...),
	}
}

func (c *LedgerServiceClient) GetSnapshot(ctx context.Context, req *connect.Request[GetSnapshotRequest]) (*connect.Response[SnapshotResponse], error) {
	return c.getSnapshot.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddCompanion(ctx context.Context, req *connect.Request[AddCompanionRequest]) (*connect.Response[CompanionResponse], error) {
	return c.addCompanion.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RenameCompanion(ctx context.Context, req *connect.Request[RenameCompanionRequest]) (*connect.Response[CompanionResponse], error) {
	return c.renameCompanion.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteCompanion(ctx context.Context, req *connect.Request[DeleteCompanionRequest]) (*connect.Response[SnapshotResponse], error) {
	return c.deleteCompanion.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UpsertTrip(ctx context.Context, req *connect.Request[UpsertTripRequest]) (*connect.Response[SnapshotResponse], error) {
	return c.upsertTrip.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SetTrips(ctx context.Context, req *connect.Request[SetTripsRequest]) (*connect.Response[SnapshotResponse], error) {
	return c.setTrips.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddPayment(ctx context.Context, req *connect.Request[AddPaymentRequest]) (*connect.Response[PaymentResponse], error) {
	return c.addPayment.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) EditPayment(ctx context.Context, req *connect.Request[EditPaymentRequest]) (*connect.Response[PaymentResponse], error) {
	return c.editPayment.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeletePayment(ctx context.Context, req *connect.Request[DeletePaymentRequest]) (*connect.Response[SnapshotResponse], error) {
	return c.deletePayment.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) TransferPayment(ctx context.Context, req *connect.Request[TransferPaymentRequest]) (*connect.Response[SnapshotResponse], error) {
	return c.transferPayment.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetBalance(ctx context.Context, req *connect.Request[GetBalanceRequest]) (*connect.Response[GetBalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetWeeklyCharge(ctx context.Context, req *connect.Request[GetWeeklyChargeRequest]) (*connect.Response[GetWeeklyChargeResponse], error) {
	return c.getWeeklyCharge.CallUnary(ctx, req)
}
